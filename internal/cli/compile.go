package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"timelinec/internal/appconfig"
	"timelinec/internal/compile"
	"timelinec/internal/logx"
	"timelinec/internal/manifest"
	"timelinec/internal/paths"
	"timelinec/internal/reportstyle"
	"timelinec/internal/script"
)

func newCompileCmd() *cobra.Command {
	var (
		scriptFlag      string
		manifestFlag    string
		bgmDurationFlag string
		bgmLoudnessFlag string
		outFlag         string
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a Script document into a Timeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompile(cmd, compileFlags{
				script:      scriptFlag,
				manifest:    manifestFlag,
				bgmDuration: bgmDurationFlag,
				bgmLoudness: bgmLoudnessFlag,
				out:         outFlag,
			})
		},
	}

	cmd.Flags().StringVar(&scriptFlag, "script", "", "Path to the Script JSON document (defaults to project config)")
	cmd.Flags().StringVar(&manifestFlag, "manifest", "", "Path to the audio manifest JSON document (defaults to project config)")
	cmd.Flags().StringVar(&bgmDurationFlag, "bgm-durations", "", "Path to a JSON map of BGM asset id to duration in frames")
	cmd.Flags().StringVar(&bgmLoudnessFlag, "bgm-loudness", "", "Path to a JSON map of BGM asset id to loudness gain in dB")
	cmd.Flags().StringVar(&outFlag, "out", "", "Path to write the compiled Timeline JSON (defaults to project config)")

	return cmd
}

type compileFlags struct {
	script      string
	manifest    string
	bgmDuration string
	bgmLoudness string
	out         string
}

func runCompile(cmd *cobra.Command, flags compileFlags) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	cfg, err := appconfig.Load(pp.ConfigFile)
	if err != nil {
		return err
	}
	pp = paths.ApplyConfig(pp, cfg)

	if flags.script != "" {
		pp.ScriptFile = flags.script
	}
	if flags.manifest != "" {
		pp.ManifestFile = flags.manifest
	}
	if flags.bgmDuration != "" {
		pp.BgmDurationFile = flags.bgmDuration
	}
	if flags.bgmLoudness != "" {
		pp.BgmLoudnessFile = flags.bgmLoudness
	}
	if flags.out != "" {
		pp.OutputFile = flags.out
	}

	if err := pp.EnsureLogsDir(); err != nil {
		return err
	}
	logger, closer, err := logx.New(pp)
	if err != nil {
		return err
	}
	defer closer.Close()

	var s script.Script
	if err := readJSON(pp.ScriptFile, &s); err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	var m manifest.Manifest
	if err := readJSON(pp.ManifestFile, &m); err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	durationFrames := map[string]int{}
	if pp.BgmDurationFile != "" {
		if exists, _ := paths.FileExists(pp.BgmDurationFile); exists {
			if err := readJSON(pp.BgmDurationFile, &durationFrames); err != nil {
				return fmt.Errorf("read bgm durations: %w", err)
			}
		}
	}

	loudnessGainDb := map[string]float64{}
	if pp.BgmLoudnessFile != "" {
		if exists, _ := paths.FileExists(pp.BgmLoudnessFile); exists {
			if err := readJSON(pp.BgmLoudnessFile, &loudnessGainDb); err != nil {
				return fmt.Errorf("read bgm loudness: %w", err)
			}
		}
	}

	result, err := compile.Compile(compile.Input{
		Script:            s,
		Manifest:          m,
		BgmDurationFrames: durationFrames,
		BgmLoudnessGainDb: loudnessGainDb,
	})
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		logger.Printf("[warn] %s: %s", w.Kind, w.Message)
		if cfg.ShouldFailOn(string(w.Kind)) {
			return fmt.Errorf("warning %s configured as fatal: %s", w.Kind, w.Message)
		}
	}

	out, err := json.MarshalIndent(result.Timeline, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal timeline: %w", err)
	}
	if err := os.WriteFile(pp.OutputFile, out, 0o644); err != nil {
		return fmt.Errorf("write timeline: %w", err)
	}

	if outputJSON {
		summary := map[string]any{
			"output":      pp.OutputFile,
			"totalFrames": result.Timeline.Meta.TotalFrames,
			"warnings":    len(result.Warnings),
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", reportstyle.HeaderStyle.Render("compiled"))
	fmt.Fprintf(cmd.OutOrStdout(), "  output: %s\n", pp.OutputFile)
	fmt.Fprintf(cmd.OutOrStdout(), "  total:  %s\n", reportstyle.FormatSeconds(result.Timeline.Meta.TotalFrames, result.Timeline.Meta.FPS))
	fmt.Fprintf(cmd.OutOrStdout(), "  warnings: %s\n", reportstyle.FormatCount(len(result.Warnings)))
	for _, w := range result.Warnings {
		fmt.Fprintf(cmd.OutOrStdout(), "    %s %s: %s\n", reportstyle.WarningKindStyle(string(w.Kind)).Render("warn"), w.Kind, w.Message)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
