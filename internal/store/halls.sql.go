package store

import "context"

const listHalls = `-- name: ListHalls :many
SELECT id, name, floor, capacity, base_rent, is_active, created_at
FROM halls
ORDER BY name`

func (q *Queries) ListHalls(ctx context.Context) ([]Hall, error) {
	rows, err := q.db.Query(ctx, listHalls)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Hall
	for rows.Next() {
		var i Hall
		if err := rows.Scan(&i.ID, &i.Name, &i.Floor, &i.Capacity, &i.BaseRent, &i.IsActive, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
