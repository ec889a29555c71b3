package postgres

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

// Reserved query-parameter keys. These steer the pipeline itself and are
// never treated as data filters.
const (
	paramPage   = "page"
	paramSort   = "sort"
	paramLimit  = "limit"
	paramFields = "fields"
)

// Pagination defaults and bounds. Limit is capped so that a single request
// cannot demand an unbounded result set.
const (
	defaultPage  = 1
	defaultLimit = 100
	maxLimit     = 500
)

// comparison operator suffixes accepted in filter keys, e.g. price[gte]=100.
var comparisonOps = map[string]struct{}{
	"gt": {}, "gte": {}, "lt": {}, "lte": {},
}

// Kind describes how a filterable column's values are parsed.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
	KindBool
)

// Schema is the explicit allow-list of columns a caller may filter, sort,
// or project on. Keys outside the schema are rejected rather than passed
// into storage predicates unchecked.
type Schema struct {
	// Filter maps filterable column names to their value kind.
	Filter map[string]Kind

	// Sort lists sortable column names.
	Sort []string

	// Project lists projectable column names.
	Project []string

	// IDColumn is the collection's identifier column. It is the default
	// sort key and is always included in projections. Defaults to "id".
	IDColumn string
}

func (s Schema) idColumn() string {
	if s.IDColumn == "" {
		return "id"
	}
	return s.IDColumn
}

func (s Schema) sortable(col string) bool {
	if col == s.idColumn() {
		return true
	}
	for _, c := range s.Sort {
		if c == col {
			return true
		}
	}
	return false
}

func (s Schema) projectable(col string) bool {
	if col == s.idColumn() {
		return true
	}
	for _, c := range s.Project {
		if c == col {
			return true
		}
	}
	return false
}

// Features threads a caller-supplied query-parameter mapping through a
// staged read query: filter, sort, paginate, project, in that fixed order.
// Later stages depend on earlier ones: pagination must apply to the
// already-filtered set, and projection must not affect filter or sort
// correctness.
//
// goqu datasets are immutable, so each stage derives a new dataset; the
// post-filter dataset is kept as a snapshot for accurate total counts.
//
// A Features instance belongs to a single request and is never shared.
type Features struct {
	ds       *goqu.SelectDataset
	filtered *goqu.SelectDataset
	params   url.Values
	schema   Schema
	err      error
}

// NewFeatures creates a pipeline over the given base dataset. params is
// untrusted caller input; schema bounds what it may reference.
func NewFeatures(ds *goqu.SelectDataset, params url.Values, schema Schema) *Features {
	return &Features{ds: ds, filtered: ds, params: params, schema: schema}
}

// Filter applies every non-reserved key/value pair as a conjunctive (AND)
// predicate. Keys of the form field[gt|gte|lt|lte] become comparisons; all
// other keys are equality filters. An empty spec leaves a match-all
// predicate. Spec errors are recorded and surfaced by Dataset, not here:
// the pipeline composes, it does not execute.
func (f *Features) Filter() *Features {
	for key, values := range f.params {
		switch key {
		case paramPage, paramSort, paramLimit, paramFields:
			continue
		}

		field, op := splitOperator(key)
		kind, ok := f.schema.Filter[field]
		if !ok {
			f.fail(fmt.Errorf("unknown filter field %q", field))
			continue
		}
		if op != "" && kind == KindBool {
			f.fail(fmt.Errorf("operator %q not supported on field %q", op, field))
			continue
		}

		for _, raw := range values {
			value, err := parseValue(raw, kind)
			if err != nil {
				f.fail(fmt.Errorf("invalid value %q for field %q: %w", raw, field, err))
				continue
			}

			col := goqu.C(field)
			switch op {
			case "gt":
				f.ds = f.ds.Where(col.Gt(value))
			case "gte":
				f.ds = f.ds.Where(col.Gte(value))
			case "lt":
				f.ds = f.ds.Where(col.Lt(value))
			case "lte":
				f.ds = f.ds.Where(col.Lte(value))
			default:
				f.ds = f.ds.Where(col.Eq(value))
			}
		}
	}

	f.filtered = f.ds
	return f
}

// Sort applies the comma-separated sort spec, honoring a leading minus for
// descending order. Without an explicit spec it sorts ascending by the
// identifier column so pagination stays stable under concurrent writes.
func (f *Features) Sort() *Features {
	spec := f.params.Get(paramSort)
	if spec == "" {
		f.ds = f.ds.Order(goqu.C(f.schema.idColumn()).Asc())
		return f
	}

	ordered := make([]exp.OrderedExpression, 0, 2)
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		desc := strings.HasPrefix(entry, "-")
		col := strings.TrimPrefix(entry, "-")
		if !f.schema.sortable(col) {
			f.fail(fmt.Errorf("unknown sort field %q", col))
			continue
		}
		if desc {
			ordered = append(ordered, goqu.C(col).Desc())
		} else {
			ordered = append(ordered, goqu.C(col).Asc())
		}
	}

	if len(ordered) > 0 {
		f.ds = f.ds.Order(ordered...)
	} else {
		f.ds = f.ds.Order(goqu.C(f.schema.idColumn()).Asc())
	}
	return f
}

// Paginate reads page (default 1) and limit (default 100, capped at 500);
// parse failures clamp to defaults rather than erroring. Skip is
// (page-1)*limit and is never negative.
func (f *Features) Paginate() *Features {
	page := positiveIntParam(f.params.Get(paramPage), defaultPage)
	limit := positiveIntParam(f.params.Get(paramLimit), defaultLimit)
	if limit > maxLimit {
		limit = maxLimit
	}

	f.ds = f.ds.Offset(uint((page - 1) * limit)).Limit(uint(limit))
	return f
}

// Select restricts the projection to the requested comma-separated fields
// plus the identifier column, which is always included. Without a fields
// spec the full default shape is returned.
func (f *Features) Select() *Features {
	spec := f.params.Get(paramFields)
	if spec == "" {
		return f
	}

	cols := []any{goqu.C(f.schema.idColumn())}
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" || entry == f.schema.idColumn() {
			continue
		}
		if !f.schema.projectable(entry) {
			f.fail(fmt.Errorf("unknown projection field %q", entry))
			continue
		}
		cols = append(cols, goqu.C(entry))
	}

	f.ds = f.ds.Select(cols...)
	return f
}

// Dataset returns the fully staged dataset, or the first spec error
// recorded during composition. Errors surface here, at execution time,
// because the stages themselves only compose.
func (f *Features) Dataset() (*goqu.SelectDataset, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ds, nil
}

// FilteredSnapshot returns the dataset as it stood after Filter, before
// sort, pagination and projection. Counting against this snapshot yields
// the true total; counting after pagination would always yield ≤ limit.
func (f *Features) FilteredSnapshot() (*goqu.SelectDataset, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.filtered, nil
}

func (f *Features) fail(err error) {
	if f.err == nil {
		f.err = err
	}
}

// splitOperator parses keys like "price[gte]" into ("price", "gte").
// Keys without a recognized comparison suffix are plain equality fields.
func splitOperator(key string) (field, op string) {
	open := strings.Index(key, "[")
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return key, ""
	}
	suffix := key[open+1 : len(key)-1]
	if _, ok := comparisonOps[suffix]; !ok {
		return key, ""
	}
	return key[:open], suffix
}

func parseValue(raw string, kind Kind) (any, error) {
	switch kind {
	case KindNumeric:
		return strconv.ParseFloat(raw, 64)
	case KindBool:
		return strconv.ParseBool(raw)
	default:
		return raw, nil
	}
}

// positiveIntParam parses a caller-supplied integer, clamping anything
// unparseable or below 1 to the fallback.
func positiveIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
