package submit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/meeplemtl/invoice-scanner/internal/entity"
	"github.com/meeplemtl/invoice-scanner/internal/lightspeed"
	"github.com/meeplemtl/invoice-scanner/internal/reconcile"
)

func newTestDriver(t *testing.T, handler http.Handler) (*Driver, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := lightspeed.NewClient(lightspeed.Config{
		AccountID: "12345",
		APIBase:   srv.URL,
	}, &lightspeed.Credentials{AccessToken: "token"}, nil)

	return NewDriver(client, Config{ShopID: 1}, nil), srv
}

func resolution(itemID int, name string, qty float64, price string) reconcile.Resolution {
	d, err := decimal.NewFromString(price)
	if err != nil {
		panic(err)
	}
	return reconcile.Resolution{
		Item:  entity.LineItem{Name: name, Quantity: qty, UnitPrice: d},
		Entry: entity.CatalogEntry{ItemID: itemID, Description: name},
	}
}

func TestSubmitCreatesOrderAndLines(t *testing.T) {
	t.Parallel()

	var lineCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/Account/12345/Shop/1.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Shop": {"shopID": "1", "name": "Main", "archived": "false"}}`))
	})
	mux.HandleFunc("/Account/12345/Order.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Order": {"orderID": "987"}}`))
	})
	mux.HandleFunc("/Account/12345/OrderLine.json", func(w http.ResponseWriter, r *http.Request) {
		lineCalls++
		w.Write([]byte(`{"OrderLine": {"orderLineID": "1"}}`))
	})

	d, _ := newTestDriver(t, mux)
	report, err := d.Submit(context.Background(), 42, []reconcile.Resolution{
		resolution(101, "CATAN Extension Marins", 5, "45.99"),
		resolution(202, "Décode Montréal", 1, "19.99"),
	}, decimal.Zero)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if report.OrderID != 987 {
		t.Errorf("OrderID = %d, want 987", report.OrderID)
	}
	if lineCalls != 2 || len(report.Created) != 2 || len(report.Failed) != 0 {
		t.Errorf("lineCalls=%d created=%d failed=%d, want 2/2/0",
			lineCalls, len(report.Created), len(report.Failed))
	}
}

func TestSubmitLineFailureContinues(t *testing.T) {
	t.Parallel()

	var lineCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/Account/12345/Shop/1.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Shop": {"shopID": "1", "name": "Main", "archived": "false"}}`))
	})
	mux.HandleFunc("/Account/12345/Order.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Order": {"orderID": "987"}}`))
	})
	mux.HandleFunc("/Account/12345/OrderLine.json", func(w http.ResponseWriter, r *http.Request) {
		lineCalls++
		if lineCalls == 1 {
			http.Error(w, `{"message": "server error"}`, http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"OrderLine": {"orderLineID": "2"}}`))
	})

	d, _ := newTestDriver(t, mux)
	report, err := d.Submit(context.Background(), 42, []reconcile.Resolution{
		resolution(101, "CATAN Extension Marins", 5, "45.99"),
		resolution(202, "Décode Montréal", 1, "19.99"),
	}, decimal.Zero)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(report.Created) != 1 || len(report.Failed) != 1 {
		t.Fatalf("created=%d failed=%d, want 1/1", len(report.Created), len(report.Failed))
	}
	if report.Failed[0].Resolution.Entry.ItemID != 101 {
		t.Errorf("failed line ItemID = %d, want 101", report.Failed[0].Resolution.Entry.ItemID)
	}
	if report.Failed[0].Err == nil {
		t.Error("failed line should carry its error")
	}
}

func TestSubmitRefusesArchivedShop(t *testing.T) {
	t.Parallel()

	var orderCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/Account/12345/Shop/1.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Shop": {"shopID": "1", "name": "Old Location", "archived": "true"}}`))
	})
	mux.HandleFunc("/Account/12345/Order.json", func(w http.ResponseWriter, r *http.Request) {
		orderCalls++
	})

	d, _ := newTestDriver(t, mux)
	_, err := d.Submit(context.Background(), 42, []reconcile.Resolution{
		resolution(101, "CATAN Extension Marins", 5, "45.99"),
	}, decimal.Zero)
	if err == nil {
		t.Fatal("expected archived shop to abort submission")
	}
	if !strings.Contains(err.Error(), "archived") {
		t.Errorf("err = %v, want mention of archived shop", err)
	}
	if orderCalls != 0 {
		t.Errorf("order header was created for an archived shop")
	}
}

func TestSubmitHeaderFailureAborts(t *testing.T) {
	t.Parallel()

	var lineCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/Account/12345/Shop/1.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Shop": {"shopID": "1", "name": "Main", "archived": "false"}}`))
	})
	mux.HandleFunc("/Account/12345/Order.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "invalid vendor"}`, http.StatusBadRequest)
	})
	mux.HandleFunc("/Account/12345/OrderLine.json", func(w http.ResponseWriter, r *http.Request) {
		lineCalls++
	})

	d, _ := newTestDriver(t, mux)
	_, err := d.Submit(context.Background(), 42, []reconcile.Resolution{
		resolution(101, "CATAN Extension Marins", 5, "45.99"),
	}, decimal.Zero)
	if err == nil {
		t.Fatal("expected header failure to abort submission")
	}
	if lineCalls != 0 {
		t.Errorf("lines were attempted after header failure")
	}
}
