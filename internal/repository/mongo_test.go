package repository

import (
	"context"
	"math"
	"net/url"
	"testing"

	"emporium_back_end/internal/catalog"
	"emporium_back_end/internal/orders"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMockMongo(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func updateResult(matched int) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: matched},
		bson.E{Key: "nModified", Value: matched},
	)
}

func TestProductRepository_ReserveStock(t *testing.T) {
	mt := newMockMongo(t)
	id := primitive.NewObjectID()

	mt.Run("enough stock", func(mt *mtest.T) {
		repo := &ProductRepository{coll: mt.Coll}
		mt.AddMockResponses(updateResult(1))

		require.NoError(mt, repo.ReserveStock(context.Background(), id, 3))

		ev := mt.GetStartedEvent()
		require.NotNil(mt, ev)
		assert.Equal(mt, "update", ev.CommandName)
		q := ev.Command.Lookup("updates", "0", "q").Document()
		assert.Equal(mt, id, q.Lookup("_id").ObjectID())
		assert.EqualValues(mt, 3, q.Lookup("stockQuantity", "$gte").AsInt64())
		assert.True(mt, q.Lookup("isDeleted", "$ne").Boolean())
		assert.EqualValues(mt, -3, ev.Command.Lookup("updates", "0", "u", "$inc", "stockQuantity").AsInt64())
	})

	mt.Run("guard not met", func(mt *mtest.T) {
		repo := &ProductRepository{coll: mt.Coll}
		mt.AddMockResponses(updateResult(0))

		err := repo.ReserveStock(context.Background(), id, 50)
		assert.ErrorIs(mt, err, ErrInsufficientStock)
	})

	mt.Run("server error", func(mt *mtest.T) {
		repo := &ProductRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "bad update"}))

		err := repo.ReserveStock(context.Background(), id, 1)
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrInsufficientStock)
		assert.Contains(mt, err.Error(), "reserve stock")
	})
}

func TestProductRepository_ReleaseStock(t *testing.T) {
	mt := newMockMongo(t)
	id := primitive.NewObjectID()

	mt.Run("restores", func(mt *mtest.T) {
		repo := &ProductRepository{coll: mt.Coll}
		mt.AddMockResponses(updateResult(1))

		require.NoError(mt, repo.ReleaseStock(context.Background(), id, 2))
		ev := mt.GetStartedEvent()
		require.NotNil(mt, ev)
		assert.EqualValues(mt, 2, ev.Command.Lookup("updates", "0", "u", "$inc", "stockQuantity").AsInt64())
	})

	mt.Run("missing product", func(mt *mtest.T) {
		repo := &ProductRepository{coll: mt.Coll}
		mt.AddMockResponses(updateResult(0))
		assert.ErrorIs(mt, repo.ReleaseStock(context.Background(), id, 2), ErrNotFound)
	})
}

func TestProductRepository_List(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("page past the end", func(mt *mtest.T) {
		repo := &ProductRepository{coll: mt.Coll}
		params, err := catalog.ParseProducts(url.Values{"page": {"5"}, "limit": {"10"}, "sort": {"price"}})
		require.NoError(mt, err)

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, bson.D{{Key: "n", Value: 3}}),
			mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch),
		)

		products, total, err := repo.List(context.Background(), bson.M{}, params.FindOptions())
		require.NoError(mt, err)
		assert.EqualValues(mt, 3, total)
		assert.NotNil(mt, products)
		assert.Empty(mt, products)

		count := mt.GetStartedEvent()
		require.NotNil(mt, count)
		assert.Equal(mt, "aggregate", count.CommandName)

		find := mt.GetStartedEvent()
		require.NotNil(mt, find)
		assert.Equal(mt, "find", find.CommandName)
		assert.EqualValues(mt, 40, find.Command.Lookup("skip").AsInt64())
		assert.EqualValues(mt, 10, find.Command.Lookup("limit").AsInt64())

		sortKeys, err := find.Command.Lookup("sort").Document().Elements()
		require.NoError(mt, err)
		require.Len(mt, sortKeys, 2)
		assert.Equal(mt, "price", sortKeys[0].Key())
		assert.EqualValues(mt, 1, sortKeys[0].Value().AsInt64())
		assert.Equal(mt, "_id", sortKeys[1].Key())
	})

	mt.Run("page beyond int range", func(mt *mtest.T) {
		repo := &ProductRepository{coll: mt.Coll}
		params, err := catalog.ParseProducts(url.Values{"page": {"100000000000000000"}, "limit": {"100"}})
		require.NoError(mt, err)

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, bson.D{{Key: "n", Value: 3}}),
			mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch),
		)

		products, _, err := repo.List(context.Background(), bson.M{}, params.FindOptions())
		require.NoError(mt, err)
		assert.Empty(mt, products)

		mt.GetStartedEvent()
		find := mt.GetStartedEvent()
		require.NotNil(mt, find)
		assert.EqualValues(mt, int64(math.MaxInt64), find.Command.Lookup("skip").AsInt64())
	})

	mt.Run("decodes the page in server order", func(mt *mtest.T) {
		repo := &ProductRepository{coll: mt.Coll}
		cheap, dear := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, bson.D{{Key: "n", Value: 2}}),
			mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: cheap}, {Key: "title", Value: "Case"}, {Key: "price", Value: 9.5}},
				bson.D{{Key: "_id", Value: dear}, {Key: "title", Value: "Phone"}, {Key: "price", Value: 499.0}},
			),
		)

		products, total, err := repo.List(context.Background(), bson.M{"isDeleted": false}, nil)
		require.NoError(mt, err)
		assert.EqualValues(mt, 2, total)
		require.Len(mt, products, 2)
		assert.Equal(mt, cheap, products[0].ID)
		assert.LessOrEqual(mt, products[0].Price, products[1].Price)
	})
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	mt := newMockMongo(t)
	id := primitive.NewObjectID()

	mt.Run("pins the current status", func(mt *mtest.T) {
		repo := &OrderRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "status", Value: string(orders.StatusDispatched)},
		}}))

		o, err := repo.UpdateStatus(context.Background(), id, orders.StatusPending, orders.StatusDispatched)
		require.NoError(mt, err)
		assert.Equal(mt, orders.StatusDispatched, o.Status)

		ev := mt.GetStartedEvent()
		require.NotNil(mt, ev)
		assert.Equal(mt, "findAndModify", ev.CommandName)
		assert.Equal(mt, id, ev.Command.Lookup("query", "_id").ObjectID())
		assert.Equal(mt, string(orders.StatusPending), ev.Command.Lookup("query", "status").StringValue())
		assert.Equal(mt, string(orders.StatusDispatched), ev.Command.Lookup("update", "$set", "status").StringValue())
	})

	mt.Run("status moved underneath", func(mt *mtest.T) {
		repo := &OrderRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.UpdateStatus(context.Background(), id, orders.StatusPending, orders.StatusCancelled)
		assert.ErrorIs(mt, err, ErrStatusChanged)
	})
}

func TestUserRepository_ToggleEnabled(t *testing.T) {
	mt := newMockMongo(t)
	id := primitive.NewObjectID()

	mt.Run("flips server side", func(mt *mtest.T) {
		repo := &UserRepository{coll: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{{Key: "_id", Value: id}, {Key: "isEnabled", Value: false}}}),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{{Key: "_id", Value: id}, {Key: "isEnabled", Value: true}}}),
		)

		first, err := repo.ToggleEnabled(context.Background(), id)
		require.NoError(mt, err)
		assert.False(mt, first.IsEnabled)
		second, err := repo.ToggleEnabled(context.Background(), id)
		require.NoError(mt, err)
		assert.True(mt, second.IsEnabled)

		for i := 0; i < 2; i++ {
			ev := mt.GetStartedEvent()
			require.NotNil(mt, ev)
			assert.Equal(mt, id, ev.Command.Lookup("query", "_id").ObjectID())
			stage := ev.Command.Lookup("update", "0", "$set", "isEnabled")
			assert.Equal(mt, "$isEnabled", stage.Document().Lookup("$not", "0").StringValue())
			assert.True(mt, ev.Command.Lookup("new").Boolean())
		}
	})

	mt.Run("unknown user", func(mt *mtest.T) {
		repo := &UserRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.ToggleEnabled(context.Background(), id)
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestIndexSpecs_NamesNotUnique(t *testing.T) {
	specs := indexSpecs()

	for _, coll := range []string{BrandsCollection, CategoriesCollection} {
		require.NotEmpty(t, specs[coll], coll)
		for _, idx := range specs[coll] {
			unique := idx.Options != nil && idx.Options.Unique != nil && *idx.Options.Unique
			assert.False(t, unique, coll)
		}
	}

	email := specs[UsersCollection][0]
	require.NotNil(t, email.Options)
	require.NotNil(t, email.Options.Unique)
	assert.True(t, *email.Options.Unique)
}
