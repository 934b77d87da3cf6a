package query

import "strconv"

const (
	defaultPagingLimit = 1000
)

// PaginateQuery appends cursor, ordering and limit clauses over column to a
// query of the form "SELECT ... WHERE (...)". The brackets are required.
//
// Example:
//
//	query := "SELECT * FROM accounts WHERE (owner = $1)"
//	PaginateQuery(query, []interface{}{owner}, "address", cursor, 10, Ascending)
//	> "SELECT * FROM accounts WHERE (owner = $1) AND address > $2 ORDER BY address ASC LIMIT 10"
func PaginateQuery(query string, args []interface{}, column string, cursor Cursor, limit uint64, direction Ordering) (string, []interface{}) {
	if len(cursor) > 0 {
		placeholder := "$" + strconv.Itoa(len(args)+1)

		if direction == Ascending {
			query += " AND " + column + " > " + placeholder
		} else {
			query += " AND " + column + " < " + placeholder
		}

		args = append(args, cursor.String())
	}

	if direction == Ascending {
		query += " ORDER BY " + column + " ASC"
	} else {
		query += " ORDER BY " + column + " DESC"
	}

	if limit > 0 {
		query += " LIMIT " + strconv.FormatUint(limit, 10)
	}

	return query, args
}

// DefaultPaginationHandler applies opts over ascending, cursor-less defaults
// with the default page size, rejecting larger pages.
func DefaultPaginationHandler(opts ...Option) (*QueryOptions, error) {
	return DefaultPaginationHandlerWithLimit(defaultPagingLimit, opts...)
}

func DefaultPaginationHandlerWithLimit(limit uint64, opts ...Option) (*QueryOptions, error) {
	req := QueryOptions{
		Limit:     limit,
		SortBy:    Ascending,
		Supported: CanLimitResults | CanSortBy | CanQueryByCursor,
	}
	if err := req.Apply(opts...); err != nil {
		return nil, ErrQueryNotSupported
	}

	if req.Limit == 0 || req.Limit > limit {
		return nil, ErrQueryNotSupported
	}

	return &req, nil
}
