package services

import (
	"context"
	"testing"

	"hotel-pms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openFolio(t *testing.T) (*FolioService, *models.Folio) {
	t.Helper()
	db := newTestDB(t)
	reservations := NewReservationService(db, nil, "")

	hotel := seedHotel(t, db, "Bentota")
	room := seedRoom(t, db, hotel.ID, "11", "DOUBLE", 100)
	guest := seedGuest(t, db, "Sahan", "P500")
	res := book(t, reservations, guest.ID, []uint{room.ID}, "2025-11-01", "2025-11-04")
	_, err := reservations.CheckIn(context.Background(), res.ID)
	require.NoError(t, err)

	folios := NewFolioService(db)
	folio, err := folios.ByReservation(context.Background(), res.ID)
	require.NoError(t, err)
	return folios, folio
}

func TestFolioService_Totals(t *testing.T) {
	folios, folio := openFolio(t)
	ctx := context.Background()

	post := func(typ string, amount float64) *models.Folio {
		f, err := folios.PostLineItem(ctx, folio.ID, LineItemInput{Type: typ, Amount: models.NewMoney(amount)}, "desk")
		require.NoError(t, err)
		return f
	}
	post(models.LineRoomCharge, 100)
	post(models.LineFoodBeverage, 25.50)
	post(models.LineDiscount, 10)
	f := post(models.LinePayment, 50)

	assert.Equal(t, models.NewMoney(115.50), f.TotalCharges)
	assert.Equal(t, models.NewMoney(50), f.TotalPayments)
	assert.Equal(t, models.NewMoney(65.50), f.Balance)
	require.Len(t, f.LineItems, 4)
	assert.Equal(t, "food beverage", f.LineItems[1].Description)

	_, err := folios.PostLineItem(ctx, folio.ID, LineItemInput{Type: "BOGUS", Amount: 100}, "desk")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = folios.PostLineItem(ctx, folio.ID, LineItemInput{Type: models.LineService, Amount: 0}, "desk")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFolioService_SettleRequiresZeroBalance(t *testing.T) {
	folios, folio := openFolio(t)
	ctx := context.Background()

	_, err := folios.PostLineItem(ctx, folio.ID, LineItemInput{Type: models.LineRoomCharge, Amount: models.NewMoney(100)}, "desk")
	require.NoError(t, err)

	_, err = folios.Settle(ctx, folio.ID)
	assert.ErrorIs(t, err, ErrBalanceOutstanding)

	_, err = folios.Close(ctx, folio.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = folios.PostLineItem(ctx, folio.ID, LineItemInput{Type: models.LinePayment, Amount: models.NewMoney(100)}, "desk")
	require.NoError(t, err)

	settled, err := folios.Settle(ctx, folio.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FolioSettled, settled.Status)
	assert.NotNil(t, settled.SettledAt)

	_, err = folios.PostLineItem(ctx, folio.ID, LineItemInput{Type: models.LineService, Amount: 100}, "desk")
	assert.ErrorIs(t, err, ErrFolioNotOpen)

	closed, err := folios.Close(ctx, folio.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FolioClosed, closed.Status)
}

func TestFolioService_VoidLineItem(t *testing.T) {
	folios, folio := openFolio(t)
	ctx := context.Background()

	f, err := folios.PostLineItem(ctx, folio.ID, LineItemInput{Type: models.LineService, Amount: models.NewMoney(40)}, "desk")
	require.NoError(t, err)
	itemID := f.LineItems[0].ID

	_, err = folios.VoidLineItem(ctx, folio.ID, itemID, "  ", "manager")
	assert.ErrorIs(t, err, ErrValidation)

	f, err = folios.VoidLineItem(ctx, folio.ID, itemID, "posted twice", "manager")
	require.NoError(t, err)
	assert.Equal(t, models.Money(0), f.Balance)
	assert.True(t, f.LineItems[0].Voided)
	assert.Equal(t, "manager", f.LineItems[0].VoidedBy)

	_, err = folios.VoidLineItem(ctx, folio.ID, itemID, "again", "manager")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = folios.VoidLineItem(ctx, folio.ID, 9999, "missing", "manager")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFolioService_Invoice(t *testing.T) {
	folios, folio := openFolio(t)
	ctx := context.Background()

	_, err := folios.PostLineItem(ctx, folio.ID, LineItemInput{Type: models.LineRoomCharge, Amount: models.NewMoney(100)}, "desk")
	require.NoError(t, err)

	pdf, err := folios.Invoice(ctx, folio.ID)
	require.NoError(t, err)
	require.Greater(t, len(pdf), 4)
	assert.Equal(t, "%PDF", string(pdf[:4]))

	_, err = folios.Invoice(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvoiceAmountSigns(t *testing.T) {
	tests := []struct {
		itemType string
		want     string
	}{
		{models.LineRoomCharge, "120.00"},
		{models.LineService, "120.00"},
		{models.LineTax, "120.00"},
		{models.LineDiscount, "-120.00"},
		{models.LinePayment, "-120.00"},
		{models.LineRefund, "-120.00"},
	}
	for _, tt := range tests {
		t.Run(tt.itemType, func(t *testing.T) {
			li := models.LineItem{Type: tt.itemType, Amount: models.NewMoney(120)}
			assert.Equal(t, tt.want, invoiceAmount(li))
		})
	}
}
