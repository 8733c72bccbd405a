package headhunter

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"

	"jobcompass/internal/storage"
)

const (
	SearchPath = "/vacancies"

	scheduleRemote = "remote"
)

// SearchParams holds the query parameters of the vacancy search endpoint.
type SearchParams struct {
	Text string `yaml:"text"`
	// hhparam is custom tag for reflect. Please see buildParams below.
	Area           int    `hhparam:"area"`
	Salary         int    `yaml:"salary"`
	OnlyWithSalary bool   `hhparam:"only_with_salary"`
	Schedule       string `yaml:"schedule"`
	Period         int    `yaml:"period"`
	Employment     string `yaml:"employment"`
	Experience     string `yaml:"experience"`
	PerPage        string `yaml:"per_page" mapstructure:"per_page"`
}

// ParamsFromCriteria maps a recipient's stored search criteria onto hh.ru
// query parameters. Unset criteria fields stay zero and are dropped by the
// query builder; a city that is not in the area table degrades to an
// unfiltered-by-location query.
func ParamsFromCriteria(c *storage.SearchCriteria) *SearchParams {
	params := &SearchParams{
		Text:       c.Position,
		Employment: c.Employment,
		Experience: c.Experience,
		Period:     c.FreshnessDays,
	}

	if id, ok := ResolveArea(c.City); ok {
		params.Area = id
	}

	if c.MinSalary > 0 {
		params.Salary = c.MinSalary
		params.OnlyWithSalary = true
	}

	if c.Remote {
		params.Schedule = scheduleRemote
	}

	if params.Period == 0 {
		params.Period = 1
	}

	return params
}

func (c *Client) search(params *SearchParams) (*Vacancies, error) {
	var vacancies []*Vacancy

	// Set per_page max as possible. It should be faster.
	if params.PerPage == "" {
		params.PerPage = perPage
	}

	q := buildParams(params)
	apiURLSearch := fmt.Sprintf("%s%s", c.APIURL, SearchPath)

	items, err := c.GetItems(apiURLSearch, q)
	if err != nil {
		return nil, err
	}

	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &vacancies,
		TagName:  "json",
	}
	decoder, _ := mapstructure.NewDecoder(cfg)
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode vacancy items: %w", err)
	}

	return &Vacancies{
		Items: vacancies,
	}, nil
}

func buildParams(params *SearchParams) url.Values {
	q := url.Values{}
	fields := reflect.VisibleFields(reflect.TypeOf(*params))
	for _, field := range fields {
		// Our custom tag is using here.
		key := field.Tag.Get("hhparam")
		if key == "" {
			// Failover to default tag if our tag do not exist.
			key = field.Tag.Get("yaml")
		}
		kind := field.Type.Kind()
		switch kind {
		case reflect.Slice:

			s := reflect.ValueOf(params).Elem().Field(field.Index[0]).Interface()
			switch v := s.(type) {
			case []int:
				for _, value := range v {
					q.Add(key, strconv.Itoa(value))
				}

			case []string:
				for _, value := range v {
					q.Add(key, value)
				}
			}

		case reflect.Bool:
			if reflect.ValueOf(params).Elem().Field(field.Index[0]).Bool() {
				q.Set(key, "true")
			}

		default:
			value := fmt.Sprintf("%v", reflect.ValueOf(params).Elem().Field(field.Index[0]).Interface())
			if value != "" && value != "0" {
				q.Set(key, value)
			}
		}
	}

	return q
}
