package features

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"storefront/catalog"
	"storefront/kit"
	"storefront/logic"
	"storefront/pricing"
	"storefront/store"
)

func parseMoney(amount string) (pricing.Cents, error) {
	dollars, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return pricing.FromDollars(dollars), nil
}

func splitList(list string) []string {
	if list == "" {
		return []string{}
	}
	return strings.Split(list, ",")
}

func expectStatus(err error, statusName string) error {
	if err == nil {
		return errors.New("expected command to fail but it succeeded")
	}
	cmdErr, ok := kit.AsCommandError(err)
	if !ok {
		return fmt.Errorf("expected CommandError, got %T", err)
	}
	if cmdErr.Code.String() != statusName {
		return fmt.Errorf("expected status %s, got %s", statusName, cmdErr.Code.String())
	}
	return nil
}

type cartTestContext struct {
	products  map[string]catalog.Product
	store     *store.Store
	snapshots int
	err       error
	totals    pricing.Totals
}

func (c *cartTestContext) reset() {
	c.products = map[string]catalog.Product{}
	c.store = nil
	c.snapshots = 0
	c.err = nil
	c.totals = pricing.Totals{}
}

func (c *cartTestContext) aProductPricedAtWithInStock(id, price string, stock int) error {
	cents, err := parseMoney(price)
	if err != nil {
		return err
	}
	c.products[id] = catalog.Product{
		ID:            id,
		Name:          id,
		Price:         cents,
		Category:      "test",
		InStock:       true,
		StockQuantity: stock,
	}
	return nil
}

func (c *cartTestContext) anOutOfStockProductPricedAt(id, price string) error {
	if err := c.aProductPricedAtWithInStock(id, price, 0); err != nil {
		return err
	}
	p := c.products[id]
	p.InStock = false
	c.products[id] = p
	return nil
}

func (c *cartTestContext) anEmptyStorefront() error {
	c.store = store.New(logic.EmptyState(), nil)
	return nil
}

func (c *cartTestContext) aSubscriber() error {
	c.store.Subscribe(func(logic.AppState) { c.snapshots++ })
	return nil
}

func (c *cartTestContext) product(id string) (catalog.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return catalog.Product{}, fmt.Errorf("no product %q defined", id)
	}
	return p, nil
}

func (c *cartTestContext) iAddOfToTheCart(quantity int, id string) error {
	p, err := c.product(id)
	if err != nil {
		return err
	}
	c.err = c.store.AddToCart(p, quantity)
	return nil
}

func (c *cartTestContext) iSetTheQuantityOfTo(id string, quantity int) error {
	c.err = c.store.UpdateCartQuantity(id, quantity)
	return nil
}

func (c *cartTestContext) iRemoveFromTheCart(id string) error {
	c.err = c.store.RemoveFromCart(id)
	return nil
}

func (c *cartTestContext) iClearTheCart() error {
	c.err = c.store.ClearCart()
	return nil
}

func (c *cartTestContext) iToggleOnTheWishlist(id string) error {
	c.err = c.store.ToggleWishlist(id)
	return nil
}

func (c *cartTestContext) iViewProducts(ids string) error {
	for _, id := range splitList(ids) {
		if err := c.store.AddRecentlyViewed(id); err != nil {
			return err
		}
	}
	return nil
}

func (c *cartTestContext) iSearchFor(term string) error {
	c.err = c.store.AddSearchHistory(term)
	return nil
}

func (c *cartTestContext) iChooseTheTheme(theme string) error {
	c.err = c.store.SetTheme(logic.Theme(theme))
	return nil
}

func (c *cartTestContext) iPriceASubtotalOf(amount string) error {
	subtotal, err := parseMoney(amount)
	if err != nil {
		return err
	}
	c.totals = pricing.Compute(subtotal)
	return nil
}

func (c *cartTestContext) theCommandSucceeds() error {
	if c.err != nil {
		return fmt.Errorf("expected success, got %v", c.err)
	}
	return nil
}

func (c *cartTestContext) theCommandFailsWithStatus(statusName string) error {
	return expectStatus(c.err, statusName)
}

func (c *cartTestContext) theErrorMessageContains(substring string) error {
	if c.err == nil {
		return errors.New("expected error but command succeeded")
	}
	if !strings.Contains(strings.ToLower(c.err.Error()), strings.ToLower(substring)) {
		return fmt.Errorf("expected error message to contain %q, got %q", substring, c.err.Error())
	}
	return nil
}

func (c *cartTestContext) theCartHasLines(lines int) error {
	if got := c.store.Cart().Len(); got != lines {
		return fmt.Errorf("expected %d cart lines, got %d", lines, got)
	}
	return nil
}

func (c *cartTestContext) theCartIsEmpty() error {
	if !c.store.Cart().IsEmpty() {
		return fmt.Errorf("expected empty cart, got %d lines", c.store.Cart().Len())
	}
	return nil
}

func (c *cartTestContext) theCartQuantityOfIs(id string, quantity int) error {
	if got := c.store.CartItemQuantity(id); got != quantity {
		return fmt.Errorf("expected quantity %d of %s, got %d", quantity, id, got)
	}
	return nil
}

func (c *cartTestContext) theCartItemCountIs(count int) error {
	if got := c.store.Cart().ItemCount(); got != count {
		return fmt.Errorf("expected item count %d, got %d", count, got)
	}
	return nil
}

func (c *cartTestContext) theCartTotalIs(amount string) error {
	want, err := parseMoney(amount)
	if err != nil {
		return err
	}
	if got := c.store.Cart().Total(); got != want {
		return fmt.Errorf("expected cart total %s, got %s", want, got)
	}
	return nil
}

func (c *cartTestContext) theSubscriberReceivedSnapshots(count int) error {
	if c.snapshots != count {
		return fmt.Errorf("expected %d snapshots, got %d", count, c.snapshots)
	}
	return nil
}

func (c *cartTestContext) theWishlistContains(id string) error {
	if !c.store.IsInWishlist(id) {
		return fmt.Errorf("expected %s in wishlist", id)
	}
	return nil
}

func (c *cartTestContext) theWishlistIsEmpty() error {
	if got := c.store.State().Wishlist; len(got) != 0 {
		return fmt.Errorf("expected empty wishlist, got %v", got)
	}
	return nil
}

func equalLists(name string, got []string, want string) error {
	if strings.Join(got, ",") != want {
		return fmt.Errorf("expected %s %q, got %q", name, want, strings.Join(got, ","))
	}
	return nil
}

func (c *cartTestContext) recentlyViewedIs(ids string) error {
	return equalLists("recently viewed", c.store.State().RecentlyViewed, ids)
}

func (c *cartTestContext) theSearchHistoryIs(terms string) error {
	return equalLists("search history", c.store.State().SearchHistory, terms)
}

func (c *cartTestContext) theThemeIs(theme string) error {
	if got := c.store.State().Theme; string(got) != theme {
		return fmt.Errorf("expected theme %s, got %s", theme, got)
	}
	return nil
}

func checkAmount(name string, got pricing.Cents, amount string) error {
	want, err := parseMoney(amount)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected %s %s, got %s", name, want, got)
	}
	return nil
}

func (c *cartTestContext) shippingIs(amount string) error {
	return checkAmount("shipping", c.totals.Shipping, amount)
}

func (c *cartTestContext) taxIs(amount string) error {
	return checkAmount("tax", c.totals.Tax, amount)
}

func (c *cartTestContext) theTotalIs(amount string) error {
	return checkAmount("total", c.totals.Total, amount)
}

func (c *cartTestContext) moreIsNeededForFreeShipping(amount string) error {
	remaining := pricing.DefaultPolicy.RemainingForFreeShipping(c.totals.Subtotal)
	return checkAmount("remaining", remaining, amount)
}

func (c *cartTestContext) theCartSummaryShows(subtotal, shipping, tax, total string) error {
	totals := c.store.Summary().Totals
	return errors.Join(
		checkAmount("subtotal", totals.Subtotal, subtotal),
		checkAmount("shipping", totals.Shipping, shipping),
		checkAmount("tax", totals.Tax, tax),
		checkAmount("total", totals.Total, total),
	)
}

const money = `\$(-?\d+\.\d{2})`

func InitializeCartScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a product "([^"]*)" priced at `+money+` with (\d+) in stock$`, tc.aProductPricedAtWithInStock)
	ctx.Step(`^an out of stock product "([^"]*)" priced at `+money+`$`, tc.anOutOfStockProductPricedAt)
	ctx.Step(`^an empty storefront$`, tc.anEmptyStorefront)
	ctx.Step(`^a subscriber$`, tc.aSubscriber)

	// When steps
	ctx.Step(`^I add (-?\d+) of "([^"]*)" to the cart$`, tc.iAddOfToTheCart)
	ctx.Step(`^I set the quantity of "([^"]*)" to (-?\d+)$`, tc.iSetTheQuantityOfTo)
	ctx.Step(`^I remove "([^"]*)" from the cart$`, tc.iRemoveFromTheCart)
	ctx.Step(`^I clear the cart$`, tc.iClearTheCart)
	ctx.Step(`^I toggle "([^"]*)" on the wishlist$`, tc.iToggleOnTheWishlist)
	ctx.Step(`^I view products "([^"]*)"$`, tc.iViewProducts)
	ctx.Step(`^I search for "([^"]*)"$`, tc.iSearchFor)
	ctx.Step(`^I choose the "([^"]*)" theme$`, tc.iChooseTheTheme)
	ctx.Step(`^I price a subtotal of `+money+`$`, tc.iPriceASubtotalOf)

	// Then steps
	ctx.Step(`^the command succeeds$`, tc.theCommandSucceeds)
	ctx.Step(`^the command fails with status "([^"]*)"$`, tc.theCommandFailsWithStatus)
	ctx.Step(`^the error message contains "([^"]*)"$`, tc.theErrorMessageContains)
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the cart quantity of "([^"]*)" is (\d+)$`, tc.theCartQuantityOfIs)
	ctx.Step(`^the cart item count is (\d+)$`, tc.theCartItemCountIs)
	ctx.Step(`^the cart total is `+money+`$`, tc.theCartTotalIs)
	ctx.Step(`^the subscriber received (\d+) snapshots$`, tc.theSubscriberReceivedSnapshots)
	ctx.Step(`^the wishlist contains "([^"]*)"$`, tc.theWishlistContains)
	ctx.Step(`^the wishlist is empty$`, tc.theWishlistIsEmpty)
	ctx.Step(`^recently viewed is "([^"]*)"$`, tc.recentlyViewedIs)
	ctx.Step(`^the search history is "([^"]*)"$`, tc.theSearchHistoryIs)
	ctx.Step(`^the theme is "([^"]*)"$`, tc.theThemeIs)
	ctx.Step(`^shipping is `+money+`$`, tc.shippingIs)
	ctx.Step(`^tax is `+money+`$`, tc.taxIs)
	ctx.Step(`^the total is `+money+`$`, tc.theTotalIs)
	ctx.Step(`^`+money+` more is needed for free shipping$`, tc.moreIsNeededForFreeShipping)
	ctx.Step(`^the cart summary shows subtotal `+money+`, shipping `+money+`, tax `+money+` and total `+money+`$`, tc.theCartSummaryShows)
}

func TestCartFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeCartScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"cart.feature", "pricing.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
