package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/tomas/iqdb/internal/config"
	"github.com/tomas/iqdb/internal/core"
	"github.com/tomas/iqdb/internal/decode"
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
}

var loadCmd = &cobra.Command{
	Use:   "load <dir> [dbfile]",
	Short: "Bulk-add every image in a directory to the store",
	Long: `Walk a directory of image files and add each to the persistent
store, deriving post_id from the numeric prefix of each filename.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	dir := args[0]
	dbfile := cfg.Store.Path
	if len(args) > 1 {
		dbfile = args[1]
	}

	files, err := collectImageFiles(dir)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(files) == 0 {
		fmt.Printf("iqdb: no image files found under %s\n", dir)
		return nil
	}

	ctx := context.Background()
	db, err := core.OpenWithPool(ctx, dbfile, cfg.Store.MaxOpenConns, cfg.Store.BusyTimeoutMS)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Loading images"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	var failed int
	for _, f := range files {
		postID, err := postIDFromFilename(f)
		if err != nil {
			failed++
			_ = bar.Add(1)
			continue
		}

		data, err := os.ReadFile(f)
		if err != nil {
			failed++
			_ = bar.Add(1)
			continue
		}

		sig, err := decode.Signature(data)
		if err != nil {
			failed++
			_ = bar.Add(1)
			continue
		}

		if err := db.Add(ctx, postID, sig); err != nil {
			return fmt.Errorf("adding %s: %w", f, err)
		}
		_ = bar.Add(1)
	}

	fmt.Printf("\niqdb: loaded %d images (%d failed) into %s\n", len(files)-failed, failed, dbfile)
	return nil
}

func collectImageFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if imageExts[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// postIDFromFilename derives the external post id from the leading run of
// digits in a file's base name, e.g. "42_cover.jpg" -> 42.
func postIDFromFilename(path string) (int64, error) {
	base := filepath.Base(path)
	end := 0
	for end < len(base) && base[end] >= '0' && base[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("filename %q has no leading numeric post id", base)
	}
	return strconv.ParseInt(base[:end], 10, 64)
}
