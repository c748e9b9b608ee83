package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tanq16/memfetch/internal/fetch"
	"github.com/tanq16/memfetch/internal/launch"
	"github.com/tanq16/memfetch/internal/memfile"
	"github.com/tanq16/memfetch/internal/output"
	"github.com/tanq16/memfetch/internal/planner"
	"github.com/tanq16/memfetch/internal/storage"
	"github.com/tanq16/memfetch/internal/utils"
)

// Distinct exit codes so hosting orchestration can tell failure causes apart
const (
	exitUsage      = 1
	exitNotFound   = 2
	exitBackend    = 3
	exitAllocation = 4
	exitChunks     = 5
	exitExec       = 6
)

var (
	retries  int
	planFile string
	debug    bool
)

var MemfetchVersion = "dev"

var rootCmd = &cobra.Command{
	Use:   "memfetch [flags] -- PROGRAM [ARGS...]",
	Short: "Memfetch downloads an S3 object into anonymous memory and executes a program with it",
	Long: `Memfetch fetches a large S3 object into a memory-backed file using
concurrent range requests, then replaces itself with the given program.
Every occurrence of the placeholder token (default '{{memfd}}') in the
program arguments is substituted with the memory file path.

Examples:
  memfetch --bucket models --key weights.bin -- ./server --weights {{memfd}}
  S3_BUCKET=models S3_KEY=weights.bin memfetch -- ./server {{memfd}}`,
	Version: MemfetchVersion,
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		utils.InitLogger(debug)
		bucket := viper.GetString("bucket")
		key := viper.GetString("key")
		placeholder := viper.GetString("placeholder")
		profile := viper.GetString("profile")
		if bucket == "" || key == "" {
			output.PrintError("Bucket and key are required (flags or S3_BUCKET/S3_KEY)")
			os.Exit(exitUsage)
		}
		program := args[0]
		programArgs := args[1:]
		// Resolve the target before spending time on the download
		if _, err := exec.LookPath(program); err != nil {
			output.PrintError(fmt.Sprintf("Program %s not found", program))
			os.Exit(exitExec)
		}

		maxAttempts := retries
		ref := storage.ObjectRef{Bucket: bucket, Key: key}
		ctx := context.Background()
		store, err := storage.NewS3Store(ctx, profile)
		if err != nil {
			output.PrintError(fmt.Sprintf("Backend setup failed: %v", err))
			os.Exit(exitBackend)
		}
		size, err := store.Head(ctx, ref)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				output.PrintError(fmt.Sprintf("Object %s not found", ref))
				os.Exit(exitNotFound)
			}
			output.PrintError(fmt.Sprintf("Size resolution failed for %s: %v", ref, err))
			os.Exit(exitBackend)
		}

		plan := planner.New(size)
		if planFile != "" {
			override, err := planner.LoadOverride(planFile)
			if err != nil {
				output.PrintError(fmt.Sprintf("Invalid plan file: %v", err))
				os.Exit(exitUsage)
			}
			plan = override.Apply(size)
			if override.MaxAttempts > 0 {
				maxAttempts = override.MaxAttempts
			}
		}

		jobID := uuid.New().String()[:8]
		mem, err := memfile.Allocate("memfetch-"+jobID, size)
		if err != nil {
			output.PrintError(fmt.Sprintf("Memory allocation failed: %v", err))
			os.Exit(exitAllocation)
		}

		tracker := fetch.NewTracker(size)
		tracker.Start()
		job := &fetch.Job{
			ID:           jobID,
			Ref:          ref,
			Size:         size,
			Plan:         plan,
			MaxAttempts:  maxAttempts,
			Store:        store,
			Mem:          mem,
			ProgressFunc: tracker.Update,
		}
		if err := fetch.Run(ctx, job); err != nil {
			mem.Close()
			output.PrintError(fmt.Sprintf("Download failed for %s: %v", ref, err))
			os.Exit(exitChunks)
		}
		tracker.Stop()

		spec := launch.Spec{
			Program:     program,
			Args:        programArgs,
			Placeholder: placeholder,
		}
		// On linux this call does not return on success
		if err := launch.Run(spec, mem.Path()); err != nil {
			mem.Close()
			var exitStatus *launch.ExitStatusError
			if errors.As(err, &exitStatus) {
				os.Exit(exitStatus.Code)
			}
			output.PrintError(fmt.Sprintf("Launch failed: %v", err))
			os.Exit(exitExec)
		}
		mem.Close()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
}

func init() {
	rootCmd.Flags().String("bucket", "", "S3 bucket containing the object (or S3_BUCKET)")
	rootCmd.Flags().String("key", "", "S3 key of the object (or S3_KEY)")
	rootCmd.Flags().String("placeholder", utils.DefaultPlaceholder, "Token in program args replaced with the memory file path (or MEMFD_PLACEHOLDER)")
	rootCmd.Flags().String("profile", "default", "AWS profile to use (or AWS_PROFILE)")
	rootCmd.Flags().IntVar(&retries, "retries", utils.DefaultMaxAttempts, "Attempts per chunk before aborting the download")
	rootCmd.Flags().StringVar(&planFile, "plan-file", "", "YAML file overriding chunk size, concurrency, and attempts")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	viper.BindPFlag("bucket", rootCmd.Flags().Lookup("bucket"))
	viper.BindPFlag("key", rootCmd.Flags().Lookup("key"))
	viper.BindPFlag("placeholder", rootCmd.Flags().Lookup("placeholder"))
	viper.BindPFlag("profile", rootCmd.Flags().Lookup("profile"))
	viper.BindEnv("bucket", "S3_BUCKET")
	viper.BindEnv("key", "S3_KEY")
	viper.BindEnv("placeholder", "MEMFD_PLACEHOLDER")
	viper.BindEnv("profile", "AWS_PROFILE")
}
