package usecase

import (
	"context"
	"testing"

	"marketplace/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_AddSameProductMergesLine(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)

	first, err := f.cart.AddItem(ctx, f.customer, AddCartItemInput{ProductID: f.product.ID, Quantity: 2})
	require.NoError(t, err)
	assert.True(t, dec("20.00").Equal(first.Subtotal))

	second, err := f.cart.AddItem(ctx, f.customer, AddCartItemInput{ProductID: f.product.ID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, first.CartItemID, second.CartItemID)
	assert.Equal(t, int64(3), second.Quantity)
	assert.True(t, dec("30.00").Equal(second.Subtotal))

	cart, err := f.cart.GetItems(ctx, f.customer)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.True(t, dec("30.00").Equal(cart.Total))
	assert.Equal(t, 1, f.store.cartItemCount(f.customer.CustomerID))
}

func TestCart_ConcurrentFirstAddsMergeIntoOneLine(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)

	//Createの直前に別リクエストが同じ商品の行を作った状況
	f.store.beforeCartItemCreate = func(item model.CartItem) {
		f.store.beforeCartItemCreate = nil
		f.store.view(func(st *memState) {
			other := item
			other.Quantity = 2
			other.Subtotal = dec("20.00")
			other.ID, other.CreatedAt = st.next()
			st.cartItems[other.ID] = other
		})
	}

	out, err := f.cart.AddItem(ctx, f.customer, AddCartItemInput{ProductID: f.product.ID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.Quantity)
	assert.True(t, dec("30.00").Equal(out.Subtotal))
	assert.Equal(t, 1, f.store.cartItemCount(f.customer.CustomerID))
}

func TestCart_ConcurrentFirstAddStillChecksStock(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)

	f.store.beforeCartItemCreate = func(item model.CartItem) {
		f.store.beforeCartItemCreate = nil
		f.store.view(func(st *memState) {
			other := item
			other.Quantity = 4
			other.Subtotal = dec("40.00")
			other.ID, other.CreatedAt = st.next()
			st.cartItems[other.ID] = other
		})
	}

	_, err := f.cart.AddItem(ctx, f.customer, AddCartItemInput{ProductID: f.product.ID, Quantity: 2})
	he := requireHTTPError(t, err, CodeInsufficientStock)
	assert.Equal(t, int64(4), he.Details["in_cart"])
}

func TestCart_AddRejectsMoreThanStock(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.add(t, f.customer, f.product.ID, 4)

	_, err := f.cart.AddItem(ctx, f.customer, AddCartItemInput{ProductID: f.product.ID, Quantity: 2})
	he := requireHTTPError(t, err, CodeInsufficientStock)
	assert.Equal(t, int64(5), he.Details["available"])
	assert.Equal(t, int64(4), he.Details["in_cart"])
}

func TestCart_AddValidation(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)

	tests := []struct {
		name  string
		actor ActingCustomer
		in    AddCartItemInput
		code  ErrorCode
	}{
		{name: "zero quantity", actor: f.customer, in: AddCartItemInput{ProductID: f.product.ID, Quantity: 0}, code: CodeInvalidInput},
		{name: "unknown product", actor: f.customer, in: AddCartItemInput{ProductID: 9999, Quantity: 1}, code: CodeNotFound},
		{name: "no customer profile", actor: f.seller, in: AddCartItemInput{ProductID: f.product.ID, Quantity: 1}, code: CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.cart.AddItem(ctx, tt.actor, tt.in)
			requireHTTPError(t, err, tt.code)
		})
	}
	assert.False(t, f.store.hasCart(f.customer.CustomerID))
}

func TestCart_SellerCannotBuyOwnProduct(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	both := f.store.seedSeller("both", true)
	own := f.store.seedProduct(both.SellerID, "own", "3.00", 10)

	_, err := f.cart.AddItem(ctx, both, AddCartItemInput{ProductID: own.ID, Quantity: 1})
	requireHTTPError(t, err, CodeForbidden)

	//他人の商品は買える
	_, err = f.cart.AddItem(ctx, both, AddCartItemInput{ProductID: f.product.ID, Quantity: 1})
	require.NoError(t, err)
}

func TestCart_UpdateQuantity(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	added, err := f.cart.AddItem(ctx, f.customer, AddCartItemInput{ProductID: f.product.ID, Quantity: 1})
	require.NoError(t, err)

	out, err := f.cart.UpdateItemQuantity(ctx, f.customer, added.CartItemID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), out.Quantity)
	assert.True(t, dec("40.00").Equal(out.Subtotal))

	_, err = f.cart.UpdateItemQuantity(ctx, f.customer, added.CartItemID, 6)
	he := requireHTTPError(t, err, CodeInsufficientStock)
	assert.Equal(t, int64(6), he.Details["requested"])

	_, err = f.cart.UpdateItemQuantity(ctx, f.customer, added.CartItemID, 0)
	requireHTTPError(t, err, CodeInvalidInput)

	cart, err := f.cart.GetItems(ctx, f.customer)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(4), cart.Items[0].Quantity)
}

func TestCart_OtherCustomersItemIsForbidden(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	added, err := f.cart.AddItem(ctx, f.customer, AddCartItemInput{ProductID: f.product.ID, Quantity: 1})
	require.NoError(t, err)
	other := f.store.seedCustomer("other")

	_, err = f.cart.UpdateItemQuantity(ctx, other, added.CartItemID, 2)
	requireHTTPError(t, err, CodeForbidden)
	err = f.cart.RemoveItem(ctx, other, added.CartItemID)
	requireHTTPError(t, err, CodeForbidden)

	err = f.cart.RemoveItem(ctx, f.customer, 12345)
	requireHTTPError(t, err, CodeNotFound)

	assert.Equal(t, 1, f.store.cartItemCount(f.customer.CustomerID))
}

func TestCart_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)

	//カートが無くてもエラーにしない
	require.NoError(t, f.cart.Clear(ctx, f.customer))
	empty, err := f.cart.GetItems(ctx, f.customer)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.True(t, empty.Total.IsZero())

	q := f.store.seedProduct(f.seller.SellerID, "Q", "1.50", 3)
	added, err := f.cart.AddItem(ctx, f.customer, AddCartItemInput{ProductID: f.product.ID, Quantity: 1})
	require.NoError(t, err)
	f.add(t, f.customer, q.ID, 2)

	require.NoError(t, f.cart.RemoveItem(ctx, f.customer, added.CartItemID))
	cart, err := f.cart.GetItems(ctx, f.customer)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, q.ID, cart.Items[0].Product.ProductID)
	assert.True(t, dec("3.00").Equal(cart.Total))

	require.NoError(t, f.cart.Clear(ctx, f.customer))
	assert.False(t, f.store.hasCart(f.customer.CustomerID))
}

// 削除済み商品の明細は表示しない
func TestCart_GetItemsSkipsDeletedProducts(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	q := f.store.seedProduct(f.seller.SellerID, "Q", "2.00", 3)
	f.add(t, f.customer, f.product.ID, 1)
	f.add(t, f.customer, q.ID, 1)

	require.NoError(t, f.store.repos().Products().SoftDelete(ctx, q.ID))

	cart, err := f.cart.GetItems(ctx, f.customer)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, f.product.ID, cart.Items[0].Product.ProductID)
	assert.True(t, dec("10.00").Equal(cart.Total))
}
