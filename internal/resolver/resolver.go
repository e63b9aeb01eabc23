package resolver

import (
	"context"
	"log/slog"
	"strings"

	"mediakeeper/internal/logging"
	"mediakeeper/internal/nfo"
	"mediakeeper/internal/services"
	"mediakeeper/internal/services/douban"
	"mediakeeper/internal/throttle"
)

// Source is the subset of the Douban client used for resolution.
type Source interface {
	Suggest(ctx context.Context, query string) ([]douban.Subject, error)
	Celebrities(ctx context.Context, mediaType, id string) (*douban.Celebrities, error)
}

// Resolver turns records into subject ids and credits.
type Resolver struct {
	source Source
	pacer  throttle.Pacer
	logger *slog.Logger
}

// New builds a resolver. A nil pacer disables courtesy pauses.
func New(source Source, pacer throttle.Pacer, logger *slog.Logger) *Resolver {
	if pacer == nil {
		pacer = throttle.Nop{}
	}
	return &Resolver{
		source: source,
		pacer:  pacer,
		logger: logging.NewComponentLogger(logger, "resolver"),
	}
}

// Resolve returns the accepted subject ids for record, or nil when nothing matched.
func (r *Resolver) Resolve(ctx context.Context, record nfo.Record) []string {
	logger := logging.WithContext(ctx, r.logger).With(
		logging.String(logging.FieldPath, record.Path),
		logging.String(logging.FieldTitle, record.Title),
	)

	ids := r.byTitle(ctx, logger, record)
	if len(ids) > 0 || record.IMDbID == "" {
		return ids
	}

	if err := r.pacer.Pause(ctx, "imdb fallback"); err != nil {
		return nil
	}
	logger.Info("retrying lookup by imdb id", logging.String("imdb_id", record.IMDbID))
	subjects, err := r.source.Suggest(ctx, record.IMDbID)
	if err != nil {
		logging.WarnWithContext(logger, "imdb lookup failed", "douban_suggest_failed",
			logging.String("imdb_id", record.IMDbID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "file left unprocessed; retried next run"),
		)
		return nil
	}
	if len(subjects) == 0 || subjects[0].ID == "" {
		logging.WarnWithContext(logger, "no subject for imdb id", "douban_no_match",
			logging.String("imdb_id", record.IMDbID),
			logging.String(logging.FieldImpact, "file left unprocessed; retried next run"),
		)
		return nil
	}
	logger.Info("resolved by imdb id",
		logging.String("imdb_id", record.IMDbID),
		logging.String(logging.FieldSubjectID, subjects[0].ID),
	)
	return []string{subjects[0].ID}
}

func (r *Resolver) byTitle(ctx context.Context, logger *slog.Logger, record nfo.Record) []string {
	subjects, err := r.source.Suggest(ctx, record.Title)
	if err != nil {
		logging.WarnWithContext(logger, "title lookup failed", "douban_suggest_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check douban.cookie and network access"),
		)
		return nil
	}
	if len(subjects) == 0 {
		logging.WarnWithContext(logger, "no suggestions for title", "douban_no_match")
		return nil
	}
	if len(subjects) == 1 {
		logger.Info("single suggestion accepted", logging.String(logging.FieldSubjectID, subjects[0].ID))
		return nonEmpty(subjects[0].ID)
	}

	candidates := filterByType(subjects, record.MediaType)
	switch len(candidates) {
	case 0:
		logging.WarnWithContext(logger, "no suggestion matches media type", "douban_no_match",
			logging.String("media_type", string(record.MediaType)),
			logging.Int("suggestions", len(subjects)),
		)
		return nil
	case 1:
		logger.Info("single typed suggestion accepted", logging.String(logging.FieldSubjectID, candidates[0].ID))
		return nonEmpty(candidates[0].ID)
	}

	best, ok := BestMatch(record.Title, record.Year, candidates)
	if !ok {
		logging.WarnWithContext(logger, "no suggestion matches title and year", "douban_no_match",
			logging.String("year", record.Year),
			logging.Int("candidates", len(candidates)),
		)
		return nil
	}
	logger.Info("best suggestion accepted",
		logging.String(logging.FieldSubjectID, best.ID),
		logging.String("candidate_title", best.Title),
	)
	return nonEmpty(best.ID)
}

// FetchCredits collects directors and actors for every id. A courtesy pause
// follows each fetch whatever its outcome.
func (r *Resolver) FetchCredits(ctx context.Context, ids []string, mediaType nfo.MediaType) nfo.Credits {
	var credits nfo.Credits
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		celebs := r.fetchOne(ctx, id, mediaType)
		if celebs == nil {
			continue
		}
		credits.Directors = append(credits.Directors, toCredits(celebs.Directors)...)
		credits.Actors = append(credits.Actors, toCredits(celebs.Actors)...)
	}
	return credits
}

func (r *Resolver) fetchOne(ctx context.Context, id string, mediaType nfo.MediaType) *douban.Celebrities {
	defer func() {
		_ = r.pacer.Pause(ctx, "credits fetched")
	}()

	logger := logging.WithContext(ctx, r.logger).With(logging.String(logging.FieldSubjectID, id))
	celebs, err := r.source.Celebrities(ctx, string(mediaType), id)
	if err != nil {
		logging.WarnWithContext(logger, "credits fetch failed", "douban_celebrities_failed",
			logging.String("media_type", string(mediaType)),
			logging.Error(err),
			logging.String("outcome", services.Outcome(err)),
			logging.String(logging.FieldErrorHint, "verify douban.api_key"),
		)
		return nil
	}
	logger.Debug("credits fetched",
		logging.Int("directors", len(celebs.Directors)),
		logging.Int("actors", len(celebs.Actors)),
	)
	return celebs
}

func filterByType(subjects []douban.Subject, mediaType nfo.MediaType) []douban.Subject {
	out := make([]douban.Subject, 0, len(subjects))
	for _, s := range subjects {
		switch mediaType {
		case nfo.MediaMovie:
			if !s.IsSeries() {
				out = append(out, s)
			}
		case nfo.MediaTV:
			if s.IsSeries() {
				out = append(out, s)
			}
		}
	}
	return out
}

func toCredits(people []douban.Person) []nfo.Credit {
	out := make([]nfo.Credit, 0, len(people))
	for _, p := range people {
		out = append(out, nfo.Credit{Name: p.Name, LatinName: p.LatinName, Character: p.Character})
	}
	return out
}

func nonEmpty(id string) []string {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	return []string{id}
}
