package applications

import "context"

type Repo interface {
	Create(ctx context.Context, a Application) error
	Get(ctx context.Context, userID, id string) (Application, error)
	List(ctx context.Context, userID string, f ListFilter) ([]Application, error)
	Update(ctx context.Context, a Application) error
	Delete(ctx context.Context, userID, id string) error
	CountByStatus(ctx context.Context, userID string) (map[Status]int, error)
}
