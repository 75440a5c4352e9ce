// Package sushictl implements the run-once command line against the lake.
package sushictl

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MichaelGalo/sushi-train/internal/pipeline"
	"github.com/MichaelGalo/sushi-train/internal/storage"
	"github.com/MichaelGalo/sushi-train/internal/urlutil"
)

// LakeAdmin is the administrative slice of the lake session the commands
// need. Every lake command attaches first; each ctl invocation is a fresh
// process with an unattached session.
type LakeAdmin interface {
	Attach(ctx context.Context) error
	EnsureMedallionSchemas(ctx context.Context) error
	SnapshotCount(ctx context.Context) (int64, error)
}

type Runner interface {
	RunSyncOnce(ctx context.Context) (pipeline.SyncSummary, error)
	RunRefreshOnce(ctx context.Context) (pipeline.RefreshSummary, error)
}

// Puller fetches upstream records and stages them in the bucket.
type Puller interface {
	Pull(ctx context.Context, baseURL string, params urlutil.Params, folder, object string) (storage.ObjectInfo, error)
}

type Options struct {
	Lake     LakeAdmin
	Pipeline Runner
	Store    storage.ObjectStore
	Source   Puller
	Timeout  time.Duration
	Stdout   io.Writer
	Stderr   io.Writer
}

func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("sushictl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	timeout := fs.Duration("timeout", durationOr(defaults.Timeout, 5*time.Minute), "command timeout (e.g. 2m)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		writeUsage(stderr)
		return 2
	}

	command := strings.TrimSpace(fs.Arg(0))
	runCtx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	var result any
	var err error
	switch command {
	case "init":
		err = runInit(runCtx, defaults.Lake)
		result = map[string]string{"status": "initialized"}
	case "sync":
		result, err = runSync(runCtx, defaults.Lake, defaults.Pipeline)
	case "refresh":
		result, err = runRefresh(runCtx, defaults.Lake, defaults.Pipeline)
	case "status":
		result, err = runStatus(runCtx, defaults.Lake)
	case "stat":
		result, err = runStat(runCtx, defaults.Store, fs.Arg(1))
	case "cat":
		if err := runCat(runCtx, defaults.Store, fs.Arg(1), stdout); err != nil {
			_, _ = fmt.Fprintf(stderr, "cat failed: %v\n", err)
			return 1
		}
		return 0
	case "pull":
		result, err = runPull(runCtx, defaults.Source, fs.Args()[1:], stderr)
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		writeUsage(stderr)
		return 2
	}

	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%s failed: %v\n", command, err)
		return 1
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "encode result: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(stdout, string(payload))
	return 0
}

func runInit(ctx context.Context, lake LakeAdmin) error {
	if lake == nil {
		return fmt.Errorf("lake is not configured")
	}
	if err := lake.Attach(ctx); err != nil {
		return err
	}
	return lake.EnsureMedallionSchemas(ctx)
}

func runSync(ctx context.Context, lake LakeAdmin, runner Runner) (pipeline.SyncSummary, error) {
	if lake == nil || runner == nil {
		return pipeline.SyncSummary{}, fmt.Errorf("lake and pipeline are not configured")
	}
	if err := lake.Attach(ctx); err != nil {
		return pipeline.SyncSummary{}, err
	}
	return runner.RunSyncOnce(ctx)
}

func runRefresh(ctx context.Context, lake LakeAdmin, runner Runner) (pipeline.RefreshSummary, error) {
	if lake == nil || runner == nil {
		return pipeline.RefreshSummary{}, fmt.Errorf("lake and pipeline are not configured")
	}
	if err := lake.Attach(ctx); err != nil {
		return pipeline.RefreshSummary{}, err
	}
	return runner.RunRefreshOnce(ctx)
}

func runStatus(ctx context.Context, lake LakeAdmin) (map[string]int64, error) {
	if lake == nil {
		return nil, fmt.Errorf("lake is not configured")
	}
	if err := lake.Attach(ctx); err != nil {
		return nil, err
	}
	count, err := lake.SnapshotCount(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]int64{"snapshots": count}, nil
}

func runStat(ctx context.Context, store storage.ObjectStore, key string) (map[string]any, error) {
	if store == nil {
		return nil, fmt.Errorf("object store is not configured")
	}
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("object key is required")
	}
	info, err := store.Stat(ctx, key)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"key":           info.Key,
		"size":          info.Size,
		"etag":          info.ETag,
		"last_modified": info.LastModified.UTC().Format(time.RFC3339),
	}, nil
}

func runCat(ctx context.Context, store storage.ObjectStore, key string, w io.Writer) error {
	if store == nil {
		return fmt.Errorf("object store is not configured")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("object key is required")
	}
	body, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()
	if _, err := io.Copy(w, body); err != nil {
		return fmt.Errorf("copy object %q: %w", key, err)
	}
	return nil
}

func runPull(ctx context.Context, puller Puller, args []string, stderr io.Writer) (map[string]any, error) {
	if puller == nil {
		return nil, fmt.Errorf("upstream source is not configured")
	}

	fs := flag.NewFlagSet("sushictl pull", flag.ContinueOnError)
	fs.SetOutput(stderr)
	baseURL := fs.String("url", "", "upstream endpoint URL")
	folder := fs.String("folder", "raw", "bucket folder for the staged object")
	object := fs.String("object", "", "staged object name, e.g. orders.parquet")
	var params paramList
	fs.Var(&params, "param", "query parameter as name=value (repeatable, order preserved)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(*baseURL) == "" || strings.TrimSpace(*object) == "" {
		return nil, fmt.Errorf("-url and -object are required")
	}

	info, err := puller.Pull(ctx, *baseURL, urlutil.Params(params), *folder, *object)
	if err != nil {
		return nil, err
	}
	return map[string]any{"key": info.Key, "size": info.Size}, nil
}

type paramList []urlutil.Param

func (p *paramList) String() string {
	parts := make([]string, len(*p))
	for i, param := range *p {
		parts[i] = fmt.Sprintf("%s=%v", param.Name, param.Value)
	}
	return strings.Join(parts, ",")
}

func (p *paramList) Set(raw string) error {
	name, value, ok := strings.Cut(raw, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", raw)
	}
	*p = append(*p, urlutil.Param{Name: name, Value: value})
	return nil
}

func writeUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: sushictl [flags] <command>")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "commands:")
	_, _ = fmt.Fprintln(w, "  init      attach the lake catalog and create medallion schemas")
	_, _ = fmt.Fprintln(w, "  sync      load bucket parquet/csv objects into the lake")
	_, _ = fmt.Fprintln(w, "  refresh   expire snapshots and clean up old files")
	_, _ = fmt.Fprintln(w, "  status    report the catalog snapshot count")
	_, _ = fmt.Fprintln(w, "  stat      show size and modification time for a bucket object")
	_, _ = fmt.Fprintln(w, "  cat       write a bucket object to stdout")
	_, _ = fmt.Fprintln(w, "  pull      fetch upstream JSON and stage it in the bucket as parquet")
}

func durationOr(value, fallback time.Duration) time.Duration {
	if value > 0 {
		return value
	}
	return fallback
}
