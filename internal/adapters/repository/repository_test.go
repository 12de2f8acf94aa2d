package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert"
	"github.com/lunchdesk/core/internal/domain/entities"
	"github.com/lunchdesk/core/internal/infrastructure/csvstore"
	"github.com/lunchdesk/core/internal/infrastructure/logger"
)

func newTestStore(t *testing.T) *csvstore.Store {
	t.Helper()
	cur := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	clock := func() time.Time {
		now := cur
		cur = cur.Add(time.Second)
		return now
	}
	store, err := csvstore.New(csvstore.Config{DataDir: t.TempDir()}, csvstore.WithClock(clock))
	assert.NoError(t, err)
	assert.NoError(t, InitCollections(store))
	return store
}

func collectionFile(store *csvstore.Store, name string) string {
	return filepath.Join(store.DataDir(), name, name+".csv")
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	d, err := os.ReadFile(path)
	assert.NoError(t, err)
	return string(d)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestInitCollectionsWritesHeaders(t *testing.T) {
	store := newTestStore(t)
	assert.Equal(t, "id,title,imagen,price,tags\n", readFile(t, collectionFile(store, "lunches")))
	assert.Equal(t, "id,towerNum,apto,customer,phoneNum,payMethod,lunch,details,time,date,orderState,total\n", readFile(t, collectionFile(store, "orders")))
	assert.Equal(t, "id,kind,title,description,amount,time,date\n", readFile(t, collectionFile(store, "expenses")))
}

func TestLunchRepositoryCRUD(t *testing.T) {
	store := newTestStore(t)
	repo := NewLunchRepository(store, logger.NewNop())
	ctx := context.Background()

	soup := &entities.Lunch{Title: "Soup", Price: 10, Tags: []string{"hot"}}
	assert.NoError(t, repo.Create(ctx, soup))
	assert.NotEqual(t, "", soup.ID)

	rice := &entities.Lunch{ID: "rice", Title: "Rice", Price: 8}
	assert.NoError(t, repo.Create(ctx, rice))

	all, err := repo.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(all))
	assert.Equal(t, soup.ID, all[0].ID)
	assert.Equal(t, []string{}, all[1].Tags)

	got, err := repo.GetByID(ctx, "rice")
	assert.NoError(t, err)
	assert.Equal(t, "Rice", got.Title)

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, entities.ErrLunchNotFound))

	rice.Price = 9.5
	assert.NoError(t, repo.Update(ctx, rice))
	got, err = repo.GetByID(ctx, "rice")
	assert.NoError(t, err)
	assert.Equal(t, 9.5, got.Price)

	assert.NoError(t, repo.Delete(ctx, soup.ID))
	all, err = repo.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(all))
	assert.Equal(t, "rice", all[0].ID)
}

func TestUpdateMissingLeavesFileUntouched(t *testing.T) {
	store := newTestStore(t)
	repo := NewLunchRepository(store, logger.NewNop())
	ctx := context.Background()
	assert.NoError(t, repo.Create(ctx, &entities.Lunch{ID: "a", Title: "A", Price: 1}))

	path := collectionFile(store, "lunches")
	before := readFile(t, path)
	snapsBefore, err := store.Backups().List(store.Collection("lunches", LunchHeader))
	assert.NoError(t, err)

	err = repo.Update(ctx, &entities.Lunch{ID: "zzz", Title: "Z"})
	assert.True(t, errors.Is(err, entities.ErrLunchNotFound))
	assert.Equal(t, before, readFile(t, path))

	err = repo.Delete(ctx, "zzz")
	assert.True(t, errors.Is(err, entities.ErrLunchNotFound))
	assert.Equal(t, before, readFile(t, path))

	snapsAfter, err := store.Backups().List(store.Collection("lunches", LunchHeader))
	assert.NoError(t, err)
	assert.Equal(t, len(snapsBefore), len(snapsAfter))
}

func TestUpdateKeepsOtherRowsVerbatim(t *testing.T) {
	store := newTestStore(t)
	repo := NewLunchRepository(store, logger.NewNop())
	path := collectionFile(store, "lunches")
	writeFile(t, path, "id,title,imagen,price,tags\na,Soup,,12.50,invalid-json\nb,Rice,,8,[]\n")

	assert.NoError(t, repo.Update(context.Background(), &entities.Lunch{ID: "b", Title: "Rice", Price: 9}))
	assert.Equal(t, "id,title,imagen,price,tags\na,Soup,,12.50,invalid-json\nb,Rice,,9,[]\n", readFile(t, path))
}

func TestDeleteRemovesAllMatchesAndKeepsOrder(t *testing.T) {
	store := newTestStore(t)
	repo := NewExpenseRepository(store, logger.NewNop())
	path := collectionFile(store, "expenses")
	writeFile(t, path, strings.Join([]string{
		"id,kind,title,description,amount,time,date",
		"x,purchase,First,,1,,",
		"y,purchase,Second,,2,,",
		"x,purchase,Dup,,3,,",
		"z,third-party,Third,,4,,",
		"",
	}, "\n"))

	assert.NoError(t, repo.Delete(context.Background(), "x"))

	all, err := repo.List(context.Background())
	assert.NoError(t, err)
	ids := []string{}
	for _, e := range all {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"y", "z"}, ids)
}

func TestOrderTotalPersistsAndRereads(t *testing.T) {
	store := newTestStore(t)
	repo := NewOrderRepository(store, logger.NewNop())
	ctx := context.Background()

	order := &entities.Order{
		Lunch:      []entities.OrderItem{{ID: "l1", Title: "Soup", Price: 10, Quantity: 2}},
		OrderState: entities.OrderStatePending,
	}
	order.Total = order.ItemsTotal()
	assert.NoError(t, repo.Create(ctx, order))

	content := readFile(t, collectionFile(store, "orders"))
	assert.True(t, strings.HasSuffix(content, ",pendiente,20\n"))

	got, err := repo.GetByID(ctx, order.ID)
	assert.NoError(t, err)
	assert.Equal(t, 20.0, got.Total)
}

func TestOrderAppendToHeaderlessLegacyFile(t *testing.T) {
	store := newTestStore(t)
	repo := NewOrderRepository(store, logger.NewNop())
	path := collectionFile(store, "orders")
	legacy := `old,T1,101,Luis,300,{},"[{""price"":5,""quantity"":2}]",,,2023-01-01,pagado,` + "\n"
	writeFile(t, path, legacy)

	assert.NoError(t, repo.Create(context.Background(), &entities.Order{ID: "new", Total: 3}))

	all, err := repo.List(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, len(all))
	assert.Equal(t, "old", all[0].ID)
	// empty stored total is recomputed from the items
	assert.Equal(t, 10.0, all[0].Total)
	assert.Equal(t, entities.OrderStatePaid, all[0].OrderState)
	assert.Equal(t, "new", all[1].ID)
	assert.True(t, strings.HasPrefix(readFile(t, path), legacy))
}

func TestOrderListSurvivesOverflowingRow(t *testing.T) {
	store := newTestStore(t)
	repo := NewOrderRepository(store, logger.NewNop())
	path := collectionFile(store, "orders")
	writeFile(t, path, strings.Join(OrderHeader, ",")+"\n"+
		`ok1,T1,101,Ana,300,{},"[{""price"":5,""quantity"":1}]",,,2024-01-01,pendiente,5`+"\n"+
		`big,T1,102,Luis,301,{},"[{""price"":1e308,""quantity"":2}]",,,2024-01-01,pendiente,`+"\n")

	all, err := repo.List(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, len(all))
	assert.Equal(t, 5.0, all[0].Total)
	assert.Equal(t, 0.0, all[1].Total)
}

func TestWritesProduceSnapshots(t *testing.T) {
	store := newTestStore(t)
	repo := NewExpenseRepository(store, logger.NewNop())
	snaps := NewSnapshotRepository(store)
	ctx := context.Background()

	assert.NoError(t, repo.Create(ctx, &entities.Expense{ID: "e1", Kind: entities.ExpenseKindPurchase, Title: "Rice", Amount: 10}))
	before, err := snaps.List(ctx, "expenses")
	assert.NoError(t, err)

	assert.NoError(t, repo.Update(ctx, &entities.Expense{ID: "e1", Kind: entities.ExpenseKindPurchase, Title: "Rice", Amount: 12}))
	after, err := snaps.List(ctx, "expenses")
	assert.NoError(t, err)
	assert.Equal(t, len(before)+1, len(after))
	assert.Equal(t, "expenses-20240301-120001.csv", after[len(after)-1].Name)
}

func TestSnapshotRepositoryRestoreAndVerify(t *testing.T) {
	store := newTestStore(t)
	repo := NewLunchRepository(store, logger.NewNop())
	snaps := NewSnapshotRepository(store)
	ctx := context.Background()

	assert.Equal(t, []string{"lunches", "orders", "expenses"}, snaps.Collections())

	assert.NoError(t, repo.Create(ctx, &entities.Lunch{ID: "a", Title: "A", Price: 1}))
	assert.NoError(t, repo.Create(ctx, &entities.Lunch{ID: "b", Title: "B", Price: 2}))

	list, err := snaps.List(ctx, "lunches")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(list))

	n, err := snaps.Verify(ctx, "lunches", list[0].Name)
	assert.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.NoError(t, snaps.Restore(ctx, "lunches", list[0].Name))
	all, err := repo.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(all))
	assert.Equal(t, "a", all[0].ID)

	removed, err := snaps.Prune(ctx, "lunches", 1)
	assert.NoError(t, err)
	assert.Equal(t, []string{list[0].Name}, removed)

	err = snaps.Restore(ctx, "lunches", "lunches-20990101-000000.csv")
	assert.True(t, errors.Is(err, csvstore.ErrSnapshotNotFound))

	_, err = snaps.List(ctx, "users")
	assert.Error(t, err)
}

func TestSnapshotRepositoryVerifyRejectsMalformed(t *testing.T) {
	store := newTestStore(t)
	snaps := NewSnapshotRepository(store)
	name := "lunches-20240101-000000.csv"
	dir := filepath.Join(store.Backups().Dir(), "lunches")
	writeFile(t, filepath.Join(dir, name), "id,title,imagen,price,tags\na,A,,1,[]\nb,B,,two,[]\n")

	n, err := snaps.Verify(context.Background(), "lunches", name)
	assert.True(t, errors.Is(err, ErrMalformedRow))
	assert.Equal(t, 1, n)
	assert.True(t, strings.Contains(err.Error(), `"b"`))
}
