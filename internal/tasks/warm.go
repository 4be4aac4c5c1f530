// Package tasks defines the background jobs that keep delivery snapshot
// caches warm, processed by the asynq worker.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/pranzo/pricing-api/internal/cache"
	"github.com/pranzo/pricing-api/internal/delivery"
)

// Task type names routed through asynq.
const (
	TypeWarmDeliverySettings = "delivery:warm"
	TypeWarmAll              = "delivery:warm-all"
)

// WarmPayload identifies the organization whose snapshot should be re-primed.
type WarmPayload struct {
	OrgID string `json:"orgId"`
}

// NewWarmTask builds a warm-up task for one organization.
func NewWarmTask(orgID string) (*asynq.Task, error) {
	payload, err := json.Marshal(WarmPayload{OrgID: orgID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeWarmDeliverySettings, payload), nil
}

// NewWarmAllTask builds the fan-out task that enqueues one warm-up per
// organization with delivery configuration.
func NewWarmAllTask() *asynq.Task {
	return asynq.NewTask(TypeWarmAll, nil)
}

// Warmer re-primes delivery settings caches before their TTL lapses so quote
// requests rarely pay the Postgres round trip.
type Warmer struct {
	Pool   *pgxpool.Pool
	Store  *delivery.Store
	Cache  *cache.Cache
	Client *asynq.Client
	Queue  string
	Logger zerolog.Logger
}

// HandleWarm refreshes the snapshot for a single organization.
func (w *Warmer) HandleWarm(ctx context.Context, t *asynq.Task) error {
	var payload WarmPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode warm payload: %w", err)
	}
	if payload.OrgID == "" {
		return fmt.Errorf("warm payload missing orgId: %w", asynq.SkipRetry)
	}

	settings, err := w.Store.LoadFresh(ctx, payload.OrgID)
	if err != nil {
		return fmt.Errorf("load settings for %s: %w", payload.OrgID, err)
	}
	if err := w.Cache.SetJSON(ctx, cache.KeyDeliverySettings(payload.OrgID), settings); err != nil {
		return fmt.Errorf("cache settings for %s: %w", payload.OrgID, err)
	}
	w.Logger.Debug().Str("org_id", payload.OrgID).Msg("delivery settings cache warmed")
	return nil
}

// HandleWarmAll enqueues one warm-up task per organization that has delivery
// configuration. Organizations without configuration degrade to the default
// fee anyway, so there is nothing to warm for them.
func (w *Warmer) HandleWarmAll(ctx context.Context, _ *asynq.Task) error {
	orgIDs, err := w.listOrgIDs(ctx)
	if err != nil {
		return fmt.Errorf("list organizations: %w", err)
	}
	for _, orgID := range orgIDs {
		task, err := NewWarmTask(orgID)
		if err != nil {
			return err
		}
		if _, err := w.Client.EnqueueContext(ctx, task, asynq.Queue(w.Queue)); err != nil {
			w.Logger.Error().Err(err).Str("org_id", orgID).Msg("enqueue warm task")
		}
	}
	w.Logger.Info().Int("organizations", len(orgIDs)).Msg("delivery cache warm-up scheduled")
	return nil
}

func (w *Warmer) listOrgIDs(ctx context.Context) ([]string, error) {
	rows, err := w.Pool.Query(ctx, `
		SELECT DISTINCT organization_id
		FROM delivery_configuration`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Mux returns the task router for the worker process.
func (w *Warmer) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeWarmDeliverySettings, w.HandleWarm)
	mux.HandleFunc(TypeWarmAll, w.HandleWarmAll)
	return mux
}
