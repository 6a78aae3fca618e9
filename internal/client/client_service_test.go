package client_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"attendify/internal/broadcast"
	"attendify/internal/client"
	clienterrors "attendify/internal/client/errors"
	"attendify/internal/events"
)

// captureBus records published envelopes in publish order.
type captureBus struct {
	mu        sync.Mutex
	envelopes []events.Envelope
	failErr   error
}

func (b *captureBus) Publish(ctx context.Context, env events.Envelope) error {
	if b.failErr != nil {
		return b.failErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.envelopes = append(b.envelopes, env)
	return nil
}

func (b *captureBus) published() []events.Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]events.Envelope, len(b.envelopes))
	copy(out, b.envelopes)
	return out
}

func (b *captureBus) Join(*broadcast.Session)  {}
func (b *captureBus) Leave(*broadcast.Session) {}
func (b *captureBus) Close()                   {}

type fakeRepo struct {
	CreateFn             func(ctx context.Context, cl *client.Client) error
	FindAllFn            func(ctx context.Context) ([]client.Client, error)
	FindByIDFn           func(ctx context.Context, id string) (*client.Client, error)
	FindVisitsByClientFn func(ctx context.Context, clientID string) ([]client.ClientVisit, error)
	UpdateFn             func(ctx context.Context, cl *client.Client) error
	DeleteFn             func(ctx context.Context, id string) error
}

func (f *fakeRepo) Create(ctx context.Context, cl *client.Client) error { return f.CreateFn(ctx, cl) }
func (f *fakeRepo) FindAll(ctx context.Context) ([]client.Client, error) {
	return f.FindAllFn(ctx)
}
func (f *fakeRepo) FindByID(ctx context.Context, id string) (*client.Client, error) {
	return f.FindByIDFn(ctx, id)
}
func (f *fakeRepo) FindVisitsByClient(ctx context.Context, clientID string) ([]client.ClientVisit, error) {
	return f.FindVisitsByClientFn(ctx, clientID)
}
func (f *fakeRepo) Update(ctx context.Context, cl *client.Client) error { return f.UpdateFn(ctx, cl) }
func (f *fakeRepo) Delete(ctx context.Context, id string) error         { return f.DeleteFn(ctx, id) }

type fakeMedia struct {
	removed *[]string
}

func (f fakeMedia) Remove(ctx context.Context, ref string) error {
	if f.removed != nil {
		*f.removed = append(*f.removed, ref)
	}
	return nil
}

func (fakeMedia) Save(ctx context.Context, subdir, filename string, r io.Reader) (string, error) {
	return subdir + "/" + filename, nil
}
func (fakeMedia) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return "/media/" + ref
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func snapshotRepo(clientID uuid.UUID, visitCount int) *fakeRepo {
	return &fakeRepo{
		FindByIDFn: func(ctx context.Context, id string) (*client.Client, error) {
			return &client.Client{
				ID:         clientID,
				FirstSeen:  time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
				LastSeen:   time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC),
				VisitCount: visitCount,
				Gender:     client.GenderFemale,
				Age:        34,
			}, nil
		},
		FindVisitsByClientFn: func(ctx context.Context, id string) ([]client.ClientVisit, error) {
			return []client.ClientVisit{
				{
					ID:       uuid.New(),
					ClientID: clientID,
					DeviceID: 7,
					Datetime: time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC),
				},
			}, nil
		},
	}
}

func TestRecordVisit(t *testing.T) {
	clientID := uuid.New()

	validReq := client.CreateVisitRequest{
		ClientID: clientID.String(),
		DeviceID: 7,
		Datetime: "2025-01-02T08:00:00Z",
	}

	t.Run("inserts and increments in one transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		bus := &captureBus{}

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO client_visits").
			WithArgs(sqlmock.AnyArg(), clientID.String(), 7, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("UPDATE clients").
			WithArgs(clientID.String()).
			WillReturnRows(sqlmock.NewRows([]string{"visit_count"}).AddRow(5))
		mock.ExpectCommit()

		svc := client.NewService(
			snapshotRepo(clientID, 5),
			client.NewVisitRepository(nil, db),
			db, bus, fakeMedia{}, zap.NewNop(),
		)

		resp, err := svc.RecordVisit(context.Background(), validReq)

		require.NoError(t, err)
		assert.Equal(t, clientID.String(), resp.ClientID)
		assert.Equal(t, 7, resp.DeviceID)
		assert.Equal(t, "2025-01-02T08:00:00Z", resp.Datetime)
		assert.NoError(t, mock.ExpectationsWereMet())

		// Snapshot first, then the visit fact.
		envs := bus.published()
		require.Len(t, envs, 2)
		assert.Equal(t, "client_update", envs[0].Event)
		assert.Equal(t, 5, envs[0].Data["visit_count"])
		assert.Equal(t, "client_visit_create", envs[1].Event)
		assert.Equal(t, clientID.String(), envs[1].Data["client"])
	})

	t.Run("unknown client rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		bus := &captureBus{}

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO client_visits").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("UPDATE clients").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		svc := client.NewService(
			snapshotRepo(clientID, 1),
			client.NewVisitRepository(nil, db),
			db, bus, fakeMedia{}, zap.NewNop(),
		)

		_, err := svc.RecordVisit(context.Background(), validReq)

		assert.ErrorIs(t, err, clienterrors.ErrClientNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Empty(t, bus.published())
	})

	t.Run("foreign key violation maps to reference error", func(t *testing.T) {
		db, mock := newMockDB(t)
		bus := &captureBus{}

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO client_visits").
			WillReturnError(&pgconn.PgError{Code: "23503"})
		mock.ExpectRollback()

		svc := client.NewService(
			snapshotRepo(clientID, 1),
			client.NewVisitRepository(nil, db),
			db, bus, fakeMedia{}, zap.NewNop(),
		)

		_, err := svc.RecordVisit(context.Background(), validReq)

		assert.ErrorIs(t, err, clienterrors.ErrClientReferenceInvalid)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Empty(t, bus.published())
	})

	t.Run("invalid datetime rejected before touching storage", func(t *testing.T) {
		db, mock := newMockDB(t)
		bus := &captureBus{}

		svc := client.NewService(
			snapshotRepo(clientID, 1),
			client.NewVisitRepository(nil, db),
			db, bus, fakeMedia{}, zap.NewNop(),
		)

		_, err := svc.RecordVisit(context.Background(), client.CreateVisitRequest{
			ClientID: clientID.String(),
			DeviceID: 7,
			Datetime: "02/01/2025 08:00",
		})

		assert.ErrorIs(t, err, clienterrors.ErrInvalidDatetime)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Empty(t, bus.published())
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		db, mock := newMockDB(t)
		bus := &captureBus{failErr: errors.New("broker down")}

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO client_visits").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("UPDATE clients").
			WillReturnRows(sqlmock.NewRows([]string{"visit_count"}).AddRow(2))
		mock.ExpectCommit()

		svc := client.NewService(
			snapshotRepo(clientID, 2),
			client.NewVisitRepository(nil, db),
			db, bus, fakeMedia{}, zap.NewNop(),
		)

		_, err := svc.RecordVisit(context.Background(), validReq)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRecordVisitConcurrent(t *testing.T) {
	clientID := uuid.New()
	const n = 8

	db, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < n; i++ {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO client_visits").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("UPDATE clients").
			WillReturnRows(sqlmock.NewRows([]string{"visit_count"}).AddRow(i + 2))
		mock.ExpectCommit()
	}

	bus := &captureBus{}
	svc := client.NewService(
		snapshotRepo(clientID, 2),
		client.NewVisitRepository(nil, db),
		db, bus, fakeMedia{}, zap.NewNop(),
	)

	var wg sync.WaitGroup
	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordVisit(context.Background(), client.CreateVisitRequest{
				ClientID: clientID.String(),
				DeviceID: 7,
				Datetime: "2025-01-02T08:00:00Z",
			})
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		assert.NoError(t, err)
	}
	// Every call ran its own insert+increment transaction.
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Len(t, bus.published(), 2*n)
}

func TestClientDelete(t *testing.T) {
	clientID := uuid.New()

	t.Run("publishes key-only envelope and removes the blob", func(t *testing.T) {
		bus := &captureBus{}
		repo := &fakeRepo{
			FindByIDFn: func(ctx context.Context, id string) (*client.Client, error) {
				return &client.Client{ID: clientID, Image: "clients/gone.jpg"}, nil
			},
			DeleteFn: func(ctx context.Context, id string) error { return nil },
		}
		var removed []string
		svc := client.NewService(repo, nil, nil, bus, fakeMedia{removed: &removed}, zap.NewNop())

		require.NoError(t, svc.Delete(context.Background(), clientID.String()))

		envs := bus.published()
		require.Len(t, envs, 1)
		assert.Equal(t, "client_delete", envs[0].Event)
		assert.Equal(t, map[string]any{"id": clientID.String()}, envs[0].Data)
		assert.Equal(t, []string{"clients/gone.jpg"}, removed)
	})

	t.Run("missing row maps to not found", func(t *testing.T) {
		bus := &captureBus{}
		repo := &fakeRepo{
			FindByIDFn: func(ctx context.Context, id string) (*client.Client, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}
		svc := client.NewService(repo, nil, nil, bus, fakeMedia{}, zap.NewNop())

		err := svc.Delete(context.Background(), clientID.String())

		assert.ErrorIs(t, err, clienterrors.ErrClientNotFound)
		assert.Empty(t, bus.published())
	})
}

func TestClientGetByIDEmbedsOrderedVisits(t *testing.T) {
	clientID := uuid.New()
	early := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	late := time.Date(2025, 1, 3, 9, 0, 0, 0, time.UTC)

	repo := snapshotRepo(clientID, 2)
	repo.FindVisitsByClientFn = func(ctx context.Context, id string) ([]client.ClientVisit, error) {
		return []client.ClientVisit{
			{ID: uuid.New(), ClientID: clientID, DeviceID: 1, Datetime: early},
			{ID: uuid.New(), ClientID: clientID, DeviceID: 2, Datetime: late},
		}, nil
	}

	svc := client.NewService(repo, nil, nil, &captureBus{}, fakeMedia{}, zap.NewNop())

	resp, err := svc.GetByID(context.Background(), clientID.String())

	require.NoError(t, err)
	require.Len(t, resp.VisitHistories, 2)
	assert.Equal(t, events.FormatTime(early), resp.VisitHistories[0].Datetime)
	assert.Equal(t, events.FormatTime(late), resp.VisitHistories[1].Datetime)
}

func TestClientGetAllUsesPreloadedVisits(t *testing.T) {
	clientID := uuid.New()
	visitAt := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	repo := &fakeRepo{
		FindAllFn: func(ctx context.Context) ([]client.Client, error) {
			return []client.Client{{
				ID:         clientID,
				VisitCount: 1,
				Visits: []client.ClientVisit{
					{ID: uuid.New(), ClientID: clientID, DeviceID: 4, Datetime: visitAt},
				},
			}}, nil
		},
		FindVisitsByClientFn: func(ctx context.Context, id string) ([]client.ClientVisit, error) {
			t.Fatal("per-client visit query issued during list")
			return nil, nil
		},
	}

	svc := client.NewService(repo, nil, nil, &captureBus{}, fakeMedia{}, zap.NewNop())
	res, err := svc.GetAll(context.Background())

	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Len(t, res[0].VisitHistories, 1)
	assert.Equal(t, events.FormatTime(visitAt), res[0].VisitHistories[0].Datetime)
}
