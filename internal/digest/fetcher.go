package digest

import (
	"context"

	"go.uber.org/zap"

	"jobcompass/internal/headhunter"
	"jobcompass/internal/storage"
)

// VacancyFetcher fetches vacancies from hh.ru for a saved search.
type VacancyFetcher struct {
	client *headhunter.Client
	logger *zap.Logger
}

var _ Fetcher = (*VacancyFetcher)(nil)

func NewVacancyFetcher(client *headhunter.Client, logger *zap.Logger) *VacancyFetcher {
	return &VacancyFetcher{client: client, logger: logger}
}

func (f *VacancyFetcher) Fetch(_ context.Context, c *storage.SearchCriteria) ([]*headhunter.Vacancy, error) {
	if c.City != "" {
		if _, ok := headhunter.ResolveArea(c.City); !ok {
			f.logger.Warn("city not in area table, searching without location filter",
				zap.String("city", c.City),
			)
		}
	}

	vacancies, err := f.client.Search(headhunter.ParamsFromCriteria(c))
	if err != nil {
		return nil, err
	}

	return vacancies.Items, nil
}
