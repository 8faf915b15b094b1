// Package seed loads item fixtures into the item store.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"secondchance/internal/model"
)

// Upserter stores an item keyed by its id.
type Upserter interface {
	Upsert(ctx context.Context, item *model.Item) (bool, error)
}

// Result counts what a seed run did.
type Result struct {
	Created int
	Updated int
	Skipped int
}

// Load reads a JSON array of items from an http(s) URL or a local file.
func Load(ctx context.Context, source string) ([]model.Item, error) {
	var r io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		body, err := fetch(ctx, source)
		if err != nil {
			return nil, err
		}
		r = body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open seed file: %w", err)
		}
		r = f
	}
	defer r.Close()
	return Decode(r)
}

func fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from API: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("API returned status code: %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// Decode parses a JSON array of items.
func Decode(r io.Reader) ([]model.Item, error) {
	var items []model.Item
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return items, nil
}

// Items upserts items by id. Items without an id are skipped, and a missing
// age_years is derived from age_days.
func Items(ctx context.Context, store Upserter, items []model.Item, log *slog.Logger) (Result, error) {
	var res Result
	for i := range items {
		item := items[i]
		if strings.TrimSpace(item.ID) == "" {
			log.Warn("skipping item without id", "name", item.Name)
			res.Skipped++
			continue
		}
		item.ObjectID = primitive.NilObjectID
		if item.AgeYears == 0 && item.AgeDays > 0 {
			item.AgeYears = model.AgeYearsFromDays(item.AgeDays)
		}

		created, err := store.Upsert(ctx, &item)
		if err != nil {
			return res, fmt.Errorf("error seeding item %s: %w", item.ID, err)
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}
	return res, nil
}
