package database

import (
	"context"
	"fmt"
)

// counterCache описывает денормализованный счётчик и отношение, которое он отражает.
// Выражение actual ссылается на внешнюю строку через имя таблицы.
type counterCache struct {
	table  string
	column string
	actual string
}

var counterCaches = []counterCache{
	{"posts", "likes_count", "(SELECT COUNT(*) FROM likes l WHERE l.post_id = posts.id)"},
	{"posts", "comments_count", "(SELECT COUNT(*) FROM comments c WHERE c.post_id = posts.id)"},
	{"users", "posts_count", "(SELECT COUNT(*) FROM posts p WHERE p.user_id = users.id)"},
	{"users", "followers_count", "(SELECT COUNT(*) FROM follows f WHERE f.followed_id = users.id)"},
	{"users", "following_count", "(SELECT COUNT(*) FROM follows f WHERE f.follower_id = users.id)"},
}

// ReconcileReport: "table.column" -> число исправленных строк.
type ReconcileReport map[string]int64

func (r ReconcileReport) Total() int64 {
	var n int64
	for _, v := range r {
		n += v
	}
	return n
}

// Reconcile пересчитывает все счётчики по их отношениям в одной транзакции.
// Репосты и просмотры считаются по событиям и не трогаются.
func (db *DB) Reconcile(ctx context.Context) (ReconcileReport, error) {
	report := ReconcileReport{}
	err := db.WithTx(ctx, func(r runner) error {
		for _, c := range counterCaches {
			drift := fmt.Sprintf("%s <> %s", c.column, c.actual)
			n, err := r.affected(ctx, fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s", c.table, c.column, c.actual, drift))
			if err != nil {
				return fmt.Errorf("reconcile %s.%s: %w", c.table, c.column, err)
			}
			report[c.table+"."+c.column] = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if total := report.Total(); total > 0 {
		db.logger.Warn("counter caches repaired", "rows", total)
	} else {
		db.logger.Info("counter caches consistent")
	}
	return report, nil
}
