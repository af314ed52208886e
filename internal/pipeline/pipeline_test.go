package pipeline

import (
	"testing"

	"ecommerce-dashboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func PtrTo[T any](v T) *T {
	return &v
}

func sampleTables() *domain.Tables {
	return &domain.Tables{
		OrderItems: []domain.OrderItem{
			{OrderID: "o1", ProductID: "p1", SellerID: "s1", Price: 10},
			{OrderID: "o2", ProductID: "p1", SellerID: "s2", Price: 20},
			{OrderID: "o3", ProductID: "p2", SellerID: "s1", Price: 35.5},
			{OrderID: "o4", ProductID: "p3", SellerID: "s3", Price: 99},
			{OrderID: "o5", ProductID: "p9", SellerID: "s9", Price: 5},
		},
		OrderReviews: []domain.OrderReview{
			{OrderID: "o1", ReviewScore: PtrTo(4)},
			{OrderID: "o3", ReviewScore: PtrTo(5)},
			{OrderID: "o4", ReviewScore: nil},
		},
		Products: []domain.Product{
			{ProductID: "p1", CategoryName: PtrTo("perfumaria")},
			{ProductID: "p2", CategoryName: PtrTo("esporte_lazer")},
			{ProductID: "p3", CategoryName: nil},
		},
		Sellers: []domain.Seller{
			{SellerID: "s1", State: PtrTo("SP")},
			{SellerID: "s2", State: PtrTo("RJ")},
			{SellerID: "s3", State: PtrTo("MG")},
		},
	}
}

func TestJoin_UniqueKeysKeepCardinality(t *testing.T) {
	tables := sampleTables()
	merged, stats := JoinWithStats(tables)

	require.Len(t, merged, len(tables.OrderItems))
	assert.False(t, stats.FannedOut())

	assert.Equal(t, domain.MergedRecord{
		OrderID: "o1", ProductID: "p1", SellerID: "s1", Price: 10,
		ReviewScore: PtrTo(4), CategoryName: PtrTo("perfumaria"), SellerState: PtrTo("SP"),
	}, merged[0])
	assert.Nil(t, merged[1].ReviewScore, "o2 has no review")
	assert.Nil(t, merged[3].CategoryName, "p3 has no category")
}

func TestJoin_LeftRowsSurviveWithoutMatches(t *testing.T) {
	tables := sampleTables()
	merged := Join(tables)

	seen := make(map[string]bool)
	for _, row := range merged {
		seen[row.OrderID] = true
	}
	for _, item := range tables.OrderItems {
		assert.True(t, seen[item.OrderID], "order %s missing from join output", item.OrderID)
	}

	last := merged[len(merged)-1]
	assert.Equal(t, "o5", last.OrderID)
	assert.Nil(t, last.ReviewScore)
	assert.Nil(t, last.CategoryName)
	assert.Nil(t, last.SellerState)
}

func TestJoin_DuplicateReviewsFanOut(t *testing.T) {
	tables := sampleTables()
	tables.OrderReviews = append(tables.OrderReviews, domain.OrderReview{OrderID: "o1", ReviewScore: PtrTo(1)})

	merged, stats := JoinWithStats(tables)

	require.Len(t, merged, len(tables.OrderItems)+1)
	assert.Equal(t, 1, stats.DuplicateReviewKeys)
	assert.True(t, stats.FannedOut())
	assert.Equal(t, "o1", merged[0].OrderID)
	assert.Equal(t, "o1", merged[1].OrderID)
	assert.Equal(t, 4, *merged[0].ReviewScore, "fan-out follows review table order")
	assert.Equal(t, 1, *merged[1].ReviewScore)
}

func TestJoin_KeysMatchExactly(t *testing.T) {
	tables := &domain.Tables{
		OrderItems: []domain.OrderItem{{OrderID: "o1", ProductID: "P1", SellerID: "s1", Price: 1}},
		Products:   []domain.Product{{ProductID: "p1", CategoryName: PtrTo("books")}},
		Sellers:    []domain.Seller{{SellerID: " s1", State: PtrTo("SP")}},
	}
	merged := Join(tables)

	require.Len(t, merged, 1)
	assert.Nil(t, merged[0].CategoryName)
	assert.Nil(t, merged[0].SellerState)
}

func TestJoin_NilTables(t *testing.T) {
	assert.Empty(t, Join(nil))
}

func TestFilter_Conjunction(t *testing.T) {
	merged := Join(sampleTables())

	got := Filter(merged, domain.Filter{
		States:     []string{"SP"},
		Categories: []string{"perfumaria", "esporte_lazer"},
		PriceMin:   0,
		PriceMax:   100,
	})

	require.Len(t, got, 2)
	assert.Equal(t, "o1", got[0].OrderID)
	assert.Equal(t, "o3", got[1].OrderID)
}

func TestFilter_InclusiveBounds(t *testing.T) {
	merged := Join(sampleTables())

	got := Filter(merged, domain.Filter{
		States:     []string{"SP", "RJ"},
		Categories: []string{"perfumaria"},
		PriceMin:   10,
		PriceMax:   20,
	})

	assert.Len(t, got, 2)
}

func TestFilter_MissingFieldsNeverMatch(t *testing.T) {
	merged := Join(sampleTables())

	got := Filter(merged, domain.Filter{
		States:     []string{"SP", "RJ", "MG", ""},
		Categories: []string{"perfumaria", "esporte_lazer", ""},
		PriceMin:   0,
		PriceMax:   1000,
	})

	for _, row := range got {
		assert.NotEqual(t, "o4", row.OrderID, "row without category must be excluded")
		assert.NotEqual(t, "o5", row.OrderID, "row without state must be excluded")
	}
	assert.Len(t, got, 3)
}

func TestFilter_EmptySelectionYieldsEmpty(t *testing.T) {
	merged := Join(sampleTables())

	assert.Empty(t, Filter(merged, domain.Filter{Categories: []string{"perfumaria"}, PriceMax: 100}))
	assert.Empty(t, Filter(merged, domain.Filter{States: []string{"SP"}, PriceMax: 100}))
}

func TestFilter_Idempotent(t *testing.T) {
	merged := Join(sampleTables())
	f := domain.Filter{
		States:     []string{"SP", "RJ"},
		Categories: []string{"perfumaria", "esporte_lazer"},
		PriceMin:   0,
		PriceMax:   30,
	}

	once := Filter(merged, f)
	twice := Filter(once, f)

	assert.Equal(t, once, twice)
}

func TestFilter_Monotonic(t *testing.T) {
	merged := Join(sampleTables())
	wide := domain.Filter{
		States:     []string{"SP", "RJ", "MG"},
		Categories: []string{"perfumaria", "esporte_lazer"},
		PriceMin:   0,
		PriceMax:   100,
	}
	base := len(Filter(merged, wide))

	narrowStates := wide
	narrowStates.States = []string{"RJ"}
	narrowCategories := wide
	narrowCategories.Categories = []string{"esporte_lazer"}
	narrowPrice := wide
	narrowPrice.PriceMin, narrowPrice.PriceMax = 15, 40

	for name, f := range map[string]domain.Filter{
		"states":     narrowStates,
		"categories": narrowCategories,
		"price":      narrowPrice,
	} {
		t.Run(name, func(t *testing.T) {
			assert.LessOrEqual(t, len(Filter(merged, f)), base)
		})
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	merged := Join(sampleTables())
	before := append([]domain.MergedRecord(nil), merged...)

	_ = Filter(merged, domain.Filter{States: []string{"SP"}, Categories: []string{"perfumaria"}, PriceMax: 10})

	assert.Equal(t, before, merged)
}

func TestProductAggregates_NullScoreCountedButNotAveraged(t *testing.T) {
	rows := []domain.MergedRecord{
		{OrderID: "o1", ProductID: "P1", Price: 10, ReviewScore: PtrTo(4)},
		{OrderID: "o2", ProductID: "P1", Price: 20, ReviewScore: nil},
	}

	rating := ProductPurchaseRating(rows)
	require.Len(t, rating, 1)
	assert.Equal(t, "P1", rating[0].ProductID)
	assert.Equal(t, 2, rating[0].PurchaseCount)
	require.NotNil(t, rating[0].AvgRating)
	assert.InDelta(t, 4.0, *rating[0].AvgRating, 1e-9)

	price := ProductPriceVsPurchase(rows)
	require.Len(t, price, 1)
	assert.InDelta(t, 15.0, price[0].AvgPrice, 1e-9)
	assert.Equal(t, 2, price[0].PurchaseCount)
}

func TestProductPurchaseRating_NoScoresGivesNilMean(t *testing.T) {
	rows := []domain.MergedRecord{{OrderID: "o1", ProductID: "P7", Price: 3}}

	rating := ProductPurchaseRating(rows)

	require.Len(t, rating, 1)
	assert.Nil(t, rating[0].AvgRating)
}

func TestProductAggregates_SortedByProduct(t *testing.T) {
	rows := []domain.MergedRecord{
		{ProductID: "b", Price: 1},
		{ProductID: "a", Price: 2},
		{ProductID: "b", Price: 3},
	}

	price := ProductPriceVsPurchase(rows)

	require.Len(t, price, 2)
	assert.Equal(t, "a", price[0].ProductID)
	assert.Equal(t, "b", price[1].ProductID)
	assert.InDelta(t, 2.0, price[1].AvgPrice, 1e-9)
}

func TestSalesByLocation_DescendingStableTies(t *testing.T) {
	var rows []domain.MergedRecord
	add := func(state string, n int) {
		for i := 0; i < n; i++ {
			rows = append(rows, domain.MergedRecord{SellerState: PtrTo(state)})
		}
	}
	// first-seen order is SP, RJ, MG
	add("SP", 1)
	add("RJ", 1)
	add("MG", 8)
	add("RJ", 7)
	add("SP", 4)

	got := SalesByLocation(rows)

	assert.Equal(t, []domain.LocationSales{
		{SellerState: "RJ", SalesCount: 8},
		{SellerState: "MG", SalesCount: 8},
		{SellerState: "SP", SalesCount: 5},
	}, got)
}

func TestSummarize(t *testing.T) {
	merged := Join(sampleTables())

	s := Summarize(merged)

	assert.Equal(t, 4, s.TotalProducts)
	assert.Equal(t, 4, s.TotalSellers)
	require.NotNil(t, s.AvgRating)
	assert.InDelta(t, 4.5, *s.AvgRating, 1e-9)
}

func TestEvaluate_EmptyFilter(t *testing.T) {
	merged := Join(sampleTables())
	f := domain.Filter{Categories: []string{"perfumaria"}, PriceMin: 0, PriceMax: 100}

	view := Evaluate(merged, f)

	assert.Equal(t, 0, view.RowCount)
	assert.NotNil(t, view.PurchaseRating)
	assert.Empty(t, view.PurchaseRating)
	assert.NotNil(t, view.PricePurchase)
	assert.Empty(t, view.PricePurchase)
	assert.NotNil(t, view.SalesByLocation)
	assert.Empty(t, view.SalesByLocation)
	assert.Nil(t, view.Summary.AvgRating)
	assert.Zero(t, view.Summary.TotalProducts)
}

func TestEvaluate_IsDeterministic(t *testing.T) {
	merged := Join(sampleTables())
	f := DefaultFilter(Options(merged))

	assert.Equal(t, Evaluate(merged, f), Evaluate(merged, f))
}

func TestOptions(t *testing.T) {
	merged := Join(sampleTables())

	opts := Options(merged)

	assert.Equal(t, []string{"SP", "RJ", "MG"}, opts.States)
	assert.Equal(t, []string{"perfumaria", "esporte_lazer"}, opts.Categories)
	assert.Equal(t, 5.0, opts.PriceMin)
	assert.Equal(t, 99.0, opts.PriceMax)

	sorted := SortedOptions(opts)
	assert.Equal(t, []string{"MG", "RJ", "SP"}, sorted.States)
	assert.Equal(t, []string{"SP", "RJ", "MG"}, opts.States, "input left untouched")
}

func TestOptions_Empty(t *testing.T) {
	opts := Options(nil)

	assert.Empty(t, opts.States)
	assert.Empty(t, opts.Categories)
	assert.Zero(t, opts.PriceMin)
	assert.Zero(t, opts.PriceMax)
}
