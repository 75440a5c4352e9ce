// Package source pulls records from upstream HTTP data sources and stages
// them in the object store for lake ingestion.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/MichaelGalo/sushi-train/internal/frame"
	"github.com/MichaelGalo/sushi-train/internal/storage"
	"github.com/MichaelGalo/sushi-train/internal/urlutil"
)

type Fetcher struct {
	HTTPClient *http.Client
	Store      storage.ObjectStore
	Logger     *slog.Logger
}

// Pull fetches JSON records from the upstream endpoint, converts them to a
// parquet payload and uploads it under folder/object. Query parameters are
// appended to baseURL in order; nil values are omitted.
func (f *Fetcher) Pull(ctx context.Context, baseURL string, params urlutil.Params, folder, object string) (storage.ObjectInfo, error) {
	if f.Store == nil {
		return storage.ObjectInfo{}, fmt.Errorf("object store is required")
	}

	requestURL := urlutil.AppendQueryParams(baseURL, params)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return storage.ObjectInfo{}, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient().Do(req)
	if err != nil {
		return storage.ObjectInfo{}, fmt.Errorf("fetch %s: %w", requestURL, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return storage.ObjectInfo{}, fmt.Errorf("fetch %s: unexpected status %d", requestURL, resp.StatusCode)
	}

	records, err := frame.DecodeJSON(resp.Body)
	if err != nil {
		return storage.ObjectInfo{}, fmt.Errorf("decode upstream records: %w", err)
	}
	payload, err := records.EncodeParquet()
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	info, err := f.Store.PutParquet(ctx, folder, object, payload)
	if err != nil {
		return storage.ObjectInfo{}, err
	}

	if f.Logger != nil {
		f.Logger.InfoContext(ctx, "staged upstream records",
			slog.String("key", info.Key),
			slog.Int("rows", records.Len()),
			slog.Int64("bytes", info.Size),
		)
	}
	return info, nil
}

func (f *Fetcher) httpClient() *http.Client {
	if f.HTTPClient != nil {
		return f.HTTPClient
	}
	return http.DefaultClient
}
