package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"puntoventa-be/internal/invoice"
	"puntoventa-be/internal/merchant"
	"puntoventa-be/internal/numbering"
	"puntoventa-be/internal/order"
	"puntoventa-be/internal/payment"
	"puntoventa-be/internal/settlement"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type MockSettlement struct {
	mock.Mock
}

func (m *MockSettlement) Settle(ctx context.Context, orderID int64, instrument payment.Instrument) (*invoice.Invoice, error) {
	args := m.Called(ctx, orderID, instrument)
	if inv, ok := args.Get(0).(*invoice.Invoice); ok {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSettlement) IssueInvoice(ctx context.Context, orderID int64) (*invoice.Invoice, error) {
	args := m.Called(ctx, orderID)
	if inv, ok := args.Get(0).(*invoice.Invoice); ok {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSettlement) StampInvoice(ctx context.Context, invoiceID int64) ([]byte, error) {
	args := m.Called(ctx, invoiceID)
	if b, ok := args.Get(0).([]byte); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func newSettleRouter(svc settlement.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(nil, nil, nil, nil, svc, nil, nil, testSecret)
	h.RegisterRoutes(r)
	return r
}

// doSettle posts a settle request authenticated as the given merchant. Each
// test uses its own merchant id so the strict rate limiter buckets do not
// bleed between cases.
func doSettle(t *testing.T, r *gin.Engine, merchantID int64, body string) *httptest.ResponseRecorder {
	t.Helper()

	token, err := merchant.GenerateJWT(testSecret, merchantID, fmt.Sprintf("m%d@example.com", merchantID))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders/101/settle", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	return w
}

const validSettleBody = `{"card_number":"4111111111111111","cvv":"123","expiry":"12/27","holder_name":"ANA LOPEZ"}`

func TestSettleEndpoint_Success(t *testing.T) {
	svc := new(MockSettlement)
	svc.On("Settle", mock.Anything, int64(101), mock.MatchedBy(func(i payment.Instrument) bool {
		return i.CardNumber == "4111111111111111" && i.CVV == "123"
	})).Return(&invoice.Invoice{ID: 77, OrderID: 101, InvoiceNumber: "FACT-000042"}, nil)

	w := doSettle(t, newSettleRouter(svc), 1, validSettleBody)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "FACT-000042")
}

func TestSettleEndpoint_ErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name       string
		merchantID int64
		err        error
		wantStatus int
		wantKind   string
	}{
		{"InvalidInstrument", 2, settlement.ErrInvalidInstrument, http.StatusUnprocessableEntity, "InvalidInstrument"},
		{"OrderNotFound", 3, order.ErrOrderNotFound, http.StatusNotFound, "OrderNotFound"},
		{"AlreadyPaid", 4, order.ErrAlreadyPaid, http.StatusConflict, "AlreadyPaid"},
		{"Declined", 5, fmt.Errorf("%w: gateway said no", payment.ErrDeclined), http.StatusPaymentRequired, "PaymentDeclined"},
		{"NumberingExhausted", 6, fmt.Errorf("retry issuance: %w", numbering.ErrNumberingExhausted), http.StatusServiceUnavailable, "NumberingExhausted"},
		{"StoreUnavailable", 7, settlement.ErrStoreUnavailable, http.StatusServiceUnavailable, "TransientStoreFailure"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockSettlement)
			svc.On("Settle", mock.Anything, int64(101), mock.Anything).Return(nil, tc.err)

			w := doSettle(t, newSettleRouter(svc), tc.merchantID, validSettleBody)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tc.wantKind)
		})
	}
}

func TestSettleEndpoint_Unauthorized(t *testing.T) {
	r := newSettleRouter(new(MockSettlement))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders/101/settle", strings.NewReader(validSettleBody))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSettleEndpoint_BadPayload(t *testing.T) {
	svc := new(MockSettlement)
	w := doSettle(t, newSettleRouter(svc), 8, `{"cvv":"123"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything)
}

func TestIssueInvoiceEndpoint(t *testing.T) {
	svc := new(MockSettlement)
	svc.On("IssueInvoice", mock.Anything, int64(101)).
		Return(&invoice.Invoice{ID: 78, OrderID: 101, InvoiceNumber: "FACT-000043"}, nil)

	r := newSettleRouter(svc)
	token, err := merchant.GenerateJWT(testSecret, 9, "m9@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders/101/invoice", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "FACT-000043")
}

func TestRenderInvoiceEndpoint(t *testing.T) {
	svc := new(MockSettlement)
	svc.On("StampInvoice", mock.Anything, int64(77)).Return([]byte("%PDF-1.4"), nil)

	r := newSettleRouter(svc)
	token, err := merchant.GenerateJWT(testSecret, 10, "m10@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/invoices/77/document", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "PDF")
}
