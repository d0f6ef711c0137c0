package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-pikeru/internal/caption"
	"github.com/wethinkt/go-pikeru/internal/search"
	"github.com/wethinkt/go-pikeru/internal/tuilog"
)

var (
	captionURL      string
	captionEndpoint string
	captionModel    string
)

var captionCmd = &cobra.Command{
	Use:   "caption <image>...",
	Short: "Caption images with the captioning service",
	Long: `Send each image to the captioning service and print its caption.

The service takes {"image": base64, "model": name} and answers
{"caption": text}. The URL defaults to caption_url from pikeru.toml.

Output is CSV (path,caption), the format of the caption index file.

Examples:
  pikeru caption photo.jpg
  pikeru caption --endpoint /sdapi/v1/interrogate *.png
  pikeru caption --json a.png b.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCaption,
}

func init() {
	captionCmd.Flags().StringVar(&captionURL, "url", "", "captioning service base URL (default: caption_url from config)")
	captionCmd.Flags().StringVar(&captionEndpoint, "endpoint", caption.EndpointCaption, "request path on the service")
	captionCmd.Flags().StringVar(&captionModel, "model", caption.DefaultModel, "model name sent with each image")
	captionCmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")
}

func runCaption(cmd *cobra.Command, args []string) error {
	url := captionURL
	if url == "" {
		url = loadConfig().Settings.CaptionURL
	}
	client := caption.NewClient(url, captionEndpoint, captionModel)
	ctx := cmd.Context()
	if !client.Online(ctx) {
		return fmt.Errorf("%w at %s", caption.ErrOffline, client.BaseURL)
	}

	var rows []search.CaptionRow
	var errs []error
	for _, arg := range args {
		path, err := filepath.Abs(arg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		text, err := client.Caption(ctx, path)
		if err != nil {
			tuilog.Log.Error("Caption failed", "path", path, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", arg, err))
			continue
		}
		rows = append(rows, search.CaptionRow{Path: path, Caption: text})
	}

	if outputJSON {
		if rows == nil {
			rows = []search.CaptionRow{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return err
		}
	} else if len(rows) > 0 {
		if err := search.WriteCaptions(os.Stdout, rows); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}
