package leads

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// sortColumns is the whitelist of sortable lead columns. sort_by values
// outside it are rejected rather than passed through to the database.
var sortColumns = map[string]bool{
	"created_at":       true,
	"updated_at":       true,
	"first_name":       true,
	"last_name":        true,
	"email":            true,
	"company":          true,
	"city":             true,
	"state":            true,
	"status":           true,
	"source":           true,
	"score":            true,
	"lead_value":       true,
	"last_activity_at": true,
}

// QueryError reports invalid list query parameters, field by field.
type QueryError struct {
	Fields map[string]string
}

func (e *QueryError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "invalid query: " + strings.Join(parts, "; ")
}

// ListQuery is the parsed filter, sort and pagination spec for List.
// All present filters are ANDed.
type ListQuery struct {
	Page  int
	Limit int

	Status  string
	Source  string
	Company string
	City    string
	Email   string

	IsQualified *bool

	ScoreMin *int
	ScoreMax *int

	ValueMin *float64
	ValueMax *float64

	CreatedAfter  *time.Time
	CreatedBefore *time.Time

	SortBy    string
	SortOrder string
}

// ParseListQuery translates request query parameters into a ListQuery.
// Invalid dates, numbers or sort fields fail the request instead of
// silently matching nothing.
func ParseListQuery(values url.Values) (*ListQuery, error) {
	fields := make(map[string]string)

	q := &ListQuery{
		Page:      1,
		Limit:     defaultPageSize,
		SortBy:    "created_at",
		SortOrder: "desc",
	}

	if v := values.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Page = n
		}
	}
	if v := values.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Limit = n
		}
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}

	q.Status = values.Get("status")
	q.Source = values.Get("source")
	q.Company = values.Get("company")
	q.City = values.Get("city")
	q.Email = values.Get("email")

	// presence of the key filters; anything but "true" means false
	if values.Has("is_qualified") {
		qualified := values.Get("is_qualified") == "true"
		q.IsQualified = &qualified
	}

	q.ScoreMin = parseIntParam(values, "score_min", fields)
	q.ScoreMax = parseIntParam(values, "score_max", fields)
	q.ValueMin = parseFloatParam(values, "lead_value_min", fields)
	q.ValueMax = parseFloatParam(values, "lead_value_max", fields)
	q.CreatedAfter = parseTimeParam(values, "created_after", fields)
	q.CreatedBefore = parseTimeParam(values, "created_before", fields)

	if v := values.Get("sort_by"); v != "" {
		if !sortColumns[v] {
			fields["sort_by"] = "Unsortable field: " + v
		}
		q.SortBy = v
	}
	if v := values.Get("sort_order"); v == "asc" {
		q.SortOrder = "asc"
	}

	if len(fields) > 0 {
		return nil, &QueryError{Fields: fields}
	}
	return q, nil
}

func parseIntParam(values url.Values, key string, fields map[string]string) *int {
	v := values.Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		fields[key] = "Must be an integer"
		return nil
	}
	return &n
}

func parseFloatParam(values url.Values, key string, fields map[string]string) *float64 {
	v := values.Get(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		fields[key] = "Must be a number"
		return nil
	}
	return &f
}

func parseTimeParam(values url.Values, key string, fields map[string]string) *time.Time {
	v := values.Get(key)
	if v == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	fields[key] = "Must be an RFC 3339 timestamp or YYYY-MM-DD date"
	return nil
}

// apply chains the filter conditions onto query. Substring matches are
// case-insensitive; range bounds are inclusive.
func (q *ListQuery) apply(query *gorm.DB) *gorm.DB {
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Source != "" {
		query = query.Where("source = ?", q.Source)
	}
	if q.Company != "" {
		query = query.Where("LOWER(company) LIKE ?", "%"+strings.ToLower(q.Company)+"%")
	}
	if q.City != "" {
		query = query.Where("LOWER(city) LIKE ?", "%"+strings.ToLower(q.City)+"%")
	}
	if q.Email != "" {
		query = query.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(q.Email)+"%")
	}
	if q.IsQualified != nil {
		query = query.Where("is_qualified = ?", *q.IsQualified)
	}
	if q.ScoreMin != nil {
		query = query.Where("score >= ?", *q.ScoreMin)
	}
	if q.ScoreMax != nil {
		query = query.Where("score <= ?", *q.ScoreMax)
	}
	if q.ValueMin != nil {
		query = query.Where("lead_value >= ?", *q.ValueMin)
	}
	if q.ValueMax != nil {
		query = query.Where("lead_value <= ?", *q.ValueMax)
	}
	if q.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *q.CreatedAfter)
	}
	if q.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *q.CreatedBefore)
	}
	return query
}

func (q *ListQuery) order() string {
	direction := "DESC"
	if q.SortOrder == "asc" {
		direction = "ASC"
	}
	return q.SortBy + " " + direction
}

func (q *ListQuery) offset() int {
	return (q.Page - 1) * q.Limit
}
