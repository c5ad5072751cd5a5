// Command qrsheet downloads the water-point catalog and writes one QR sticker
// image per point plus a CSV manifest, for batch printing outside the admin
// page.
//
// Usage:
//
//	go run ./cmd/qrsheet \
//	  -out stickers \
//	  -base-url https://agile-skills.vercel.app \
//	  -size 512
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/waterpoints-service/internal/adapter/opendata"
	"github.com/couchcryptid/waterpoints-service/internal/adapter/qr"
	"github.com/couchcryptid/waterpoints-service/internal/catalog"
	"github.com/couchcryptid/waterpoints-service/internal/config"
	"github.com/couchcryptid/waterpoints-service/internal/domain"
	"github.com/couchcryptid/waterpoints-service/internal/observability"
)

const manifestName = "manifest.csv"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	outDir := flag.String("out", "", "output directory for PNG files and the manifest")
	baseURL := flag.String("base-url", cfg.PublicBaseURL, "public site the stickers link to")
	size := flag.Int("size", cfg.QRSize, "image width and height in pixels")
	urls := flag.String("urls", strings.Join(cfg.CatalogURLs, ","), "comma-separated GeoJSON export URLs")
	timeout := flag.Duration("timeout", cfg.OpenDataTimeout, "per-source fetch timeout")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	metrics := observability.NewMetricsForTesting()

	var sources []catalog.FeatureSource
	for _, u := range strings.Split(*urls, ",") {
		if u = strings.TrimSpace(u); u != "" {
			sources = append(sources, opendata.NewClient(u, *timeout, logger))
		}
	}
	if len(sources) == 0 {
		return fmt.Errorf("no catalog URLs given")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+30*time.Second)
	defer cancel()

	snap := catalog.NewLoader(sources, nil, logger, metrics, nil).Load(ctx)
	for _, st := range snap.Sources {
		if st.Error != "" {
			log.Printf("%s: failed: %s", st.Name, st.Error)
			continue
		}
		log.Printf("%s: %d points", st.Name, st.Count)
	}

	renderer := qr.NewRenderer(*size, 0, metrics)
	written, skipped, err := writeSheet(*outDir, snap.Features, *baseURL, renderer)
	if err != nil {
		return err
	}
	log.Printf("wrote %d stickers to %s (%d skipped without a stable id)", written, *outDir, skipped)
	return nil
}

type pngRenderer interface {
	PNG(content string) ([]byte, error)
}

// writeSheet writes <id>.png for every feature with a stable id and a
// manifest listing id, name, address and link. Features that only have a
// random fallback id are skipped: their stickers would stop resolving after
// the next catalog load.
func writeSheet(dir string, features []domain.Feature, baseURL string, r pngRenderer) (written, skipped int, err error) {
	f, err := os.Create(filepath.Join(dir, manifestName))
	if err != nil {
		return 0, 0, fmt.Errorf("create manifest: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "naam", "adres", "link", "file"}); err != nil {
		return 0, 0, fmt.Errorf("write manifest header: %w", err)
	}

	seen := make(map[string]bool, len(features))
	for _, feat := range features {
		if !domain.IsStableID(feat.ResolvedID) {
			skipped++
			continue
		}
		if seen[feat.ResolvedID] {
			continue
		}
		seen[feat.ResolvedID] = true

		link := domain.DeepLink(baseURL, feat.ResolvedID)
		img, err := r.PNG(link)
		if err != nil {
			return written, skipped, fmt.Errorf("render %s: %w", feat.ResolvedID, err)
		}

		name := url.PathEscape(feat.ResolvedID) + ".png"
		if err := os.WriteFile(filepath.Join(dir, name), img, 0o644); err != nil {
			return written, skipped, fmt.Errorf("write %s: %w", name, err)
		}

		p := domain.NewQrPoint(feat)
		if err := w.Write([]string{p.ID, p.Naam, p.Adres, link, name}); err != nil {
			return written, skipped, fmt.Errorf("write manifest row: %w", err)
		}
		written++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return written, skipped, fmt.Errorf("flush manifest: %w", err)
	}
	return written, skipped, nil
}
