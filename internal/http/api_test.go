package handlers_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"shinejewelry/internal/auth"
	"shinejewelry/internal/config"
	"shinejewelry/internal/http/handlers"
	"shinejewelry/internal/mail"
	"shinejewelry/internal/repos"
	"shinejewelry/internal/store"
	"shinejewelry/internal/uploads"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (f *fakeMailer) Send(_ context.Context, m mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeMailer) messages() []mail.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mail.Message(nil), f.sent...)
}

// newTestApp wires the full route table against temp stores and a
// recording mailer, mirroring cmd/shinejewelry.
func newTestApp(t *testing.T) (*fiber.App, *fakeMailer) {
	t.Helper()
	cfg := config.Config{
		OwnerEmail: "owner@shine.test",
		BaseURL:    "http://localhost:3000",
		PendingTTL: time.Hour,
	}
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	files, err := uploads.NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	fm := &fakeMailer{}

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(requestid.New())

	deps := handlers.NewDeps(cfg, st, files, db, fm)
	admin := auth.RequireAdmin(auth.NewEnvVerifier("admin", ""))

	app.Get("/api/products", deps.Catalog.Products)
	app.Get("/api/ping", deps.Catalog.Ping)
	app.Post("/api/add-category", admin, deps.Category.Add)
	app.Post("/api/add-product", admin, deps.Product.Add)
	app.Post("/api/add-product-background", admin, deps.Product.Add)
	app.Patch("/api/product/:id", admin, deps.Product.Edit)
	app.Delete("/api/product/:id", admin, deps.Product.Delete)
	app.Delete("/api/category/:id", admin, deps.Category.Delete)
	app.Post("/api/contact", deps.Contact.Send)
	app.Post("/api/order", deps.Order.Place)
	app.Get("/api/confirm-payment", deps.Order.ConfirmPayment)

	return app, fm
}

func basicAuth(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func jsonReq(method, target string, body string, auth string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	return req
}

func TestAdminAuth(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonReq("POST", "/api/add-category", `{"id":"x","name":"X"}`, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no creds: want 401, got %d", resp.StatusCode)
	}
	if resp.Header.Get("WWW-Authenticate") == "" {
		t.Fatal("401 must carry a Basic challenge")
	}

	resp, err = app.Test(jsonReq("POST", "/api/add-category", `{"id":"x","name":"X"}`, basicAuth("admin", "wrong")))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("bad creds: want 403, got %d", resp.StatusCode)
	}
}

type productsResp struct {
	OK         bool `json:"ok"`
	Categories []struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Section string `json:"section"`
	} `json:"categories"`
	Products []struct {
		ID       string  `json:"id"`
		Title    string  `json:"title"`
		Price    float64 `json:"price"`
		Category string  `json:"category"`
	} `json:"products"`
}

func readProducts(t *testing.T, app *fiber.App) productsResp {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/api/products", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/products: want 200, got %d", resp.StatusCode)
	}
	var out productsResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}

func multipartProduct(t *testing.T, fields map[string]string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if withImage {
		fw, err := w.CreateFormFile("images", "ring.jpg")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte("fake-jpeg-bytes")); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf, w.FormDataContentType()
}

func TestCatalogLifecycle(t *testing.T) {
	app, _ := newTestApp(t)
	adm := basicAuth("admin", "admin")

	// add category
	resp, err := app.Test(jsonReq("POST", "/api/add-category",
		`{"id":"ring","name":"Rings","section":"stainless"}`, adm))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("add category: want 200, got %d body=%s", resp.StatusCode, body)
	}

	// duplicate rejected
	resp, _ = app.Test(jsonReq("POST", "/api/add-category", `{"id":"ring","name":"Rings"}`, adm))
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("dup category: want 409, got %d", resp.StatusCode)
	}

	// add product (multipart with one image)
	buf, ctype := multipartProduct(t, map[string]string{
		"title": "Gold Ring", "price": "500", "category": "ring", "desc": "shiny",
	}, true)
	req := httptest.NewRequest("POST", "/api/add-product", buf)
	req.Header.Set("Content-Type", ctype)
	req.Header.Set("Authorization", adm)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("add product: want 200, got %d body=%s", resp.StatusCode, body)
	}

	out := readProducts(t, app)
	if !out.OK || len(out.Categories) != 1 || out.Categories[0].Section != "stainless" {
		t.Fatalf("bad categories: %+v", out.Categories)
	}
	if len(out.Products) != 1 || out.Products[0].Price != 500 || out.Products[0].Category != "ring" {
		t.Fatalf("bad products: %+v", out.Products)
	}

	// unknown category rejected
	buf, ctype = multipartProduct(t, map[string]string{
		"title": "Lost Ring", "price": "10", "category": "ghost",
	}, false)
	req = httptest.NewRequest("POST", "/api/add-product", buf)
	req.Header.Set("Content-Type", ctype)
	req.Header.Set("Authorization", adm)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown category: want 404, got %d", resp.StatusCode)
	}

	// edit price
	buf, ctype = multipartProduct(t, map[string]string{"price": "450"}, false)
	req = httptest.NewRequest("PATCH", "/api/product/"+out.Products[0].ID, buf)
	req.Header.Set("Content-Type", ctype)
	req.Header.Set("Authorization", adm)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("edit: want 200, got %d", resp.StatusCode)
	}
	if got := readProducts(t, app).Products[0].Price; got != 450 {
		t.Fatalf("edit should persist price 450, got %v", got)
	}

	// delete the category and everything under it
	req = httptest.NewRequest("DELETE", "/api/category/ring", nil)
	req.Header.Set("Authorization", adm)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete category: want 200, got %d", resp.StatusCode)
	}
	var del struct {
		OK              bool `json:"ok"`
		DeletedProducts int  `json:"deletedProducts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&del); err != nil {
		t.Fatal(err)
	}
	if !del.OK || del.DeletedProducts != 1 {
		t.Fatalf("bad cascade response: %+v", del)
	}
	out = readProducts(t, app)
	if len(out.Categories) != 0 || len(out.Products) != 0 {
		t.Fatalf("category delete should empty the catalog, got %+v", out)
	}
}

func TestOrderEndpoint(t *testing.T) {
	app, fm := newTestApp(t)

	// missing fields
	resp, _ := app.Test(jsonReq("POST", "/api/order", `{"items":[],"paymentType":"COD"}`, ""))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid order: want 400, got %d", resp.StatusCode)
	}

	body := `{
	  "customer": {"name":"Mona","email":"mona@example.com"},
	  "items": [{"id":"x","title":"X","price":100,"qty":2}],
	  "total": 280,
	  "paymentType": "COD",
	  "shipping": 80
	}`
	resp, err := app.Test(jsonReq("POST", "/api/order", body, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("COD order: want 200, got %d body=%s", resp.StatusCode, b)
	}
	msgs := fm.messages()
	if len(msgs) != 2 {
		t.Fatalf("COD should notify both parties, got %d emails", len(msgs))
	}
	if !strings.Contains(msgs[1].HTML, "200.00 EGP") {
		t.Fatal("customer email missing subtotal 200.00 EGP")
	}
}

func TestConfirmPaymentEndpoint(t *testing.T) {
	app, fm := newTestApp(t)

	body := `{
	  "customer": {"name":"Mona","email":"mona@example.com"},
	  "items": [{"id":"x","title":"X","price":100,"qty":1}],
	  "total": 180,
	  "paymentType": "Instapay"
	}`
	resp, err := app.Test(jsonReq("POST", "/api/order", body, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("instapay order: want 200, got %d", resp.StatusCode)
	}
	if len(fm.messages()) != 1 {
		t.Fatalf("customer must receive nothing before confirmation, got %d emails", len(fm.messages()))
	}

	owner := fm.messages()[0].HTML
	const marker = "confirm-payment?id="
	i := strings.Index(owner, marker)
	if i == -1 {
		t.Fatal("owner email missing confirmation link")
	}
	token := owner[i+len(marker):]
	if j := strings.IndexAny(token, "&\""); j != -1 {
		token = token[:j]
	}

	// missing params
	resp, _ = app.Test(httptest.NewRequest("GET", "/api/confirm-payment?id="+token, nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing email: want 400, got %d", resp.StatusCode)
	}

	// page with checkbox before confirm=true
	resp, _ = app.Test(httptest.NewRequest("GET", "/api/confirm-payment?id="+token+"&email=mona%40example.com", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirm page: want 200, got %d", resp.StatusCode)
	}
	page, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(page), "owner_confirmed") {
		t.Fatal("confirmation page should require the checkbox")
	}
	if len(fm.messages()) != 1 {
		t.Fatal("rendering the page must not send the customer email")
	}

	// actual confirmation
	resp, _ = app.Test(httptest.NewRequest("GET", "/api/confirm-payment?id="+token+"&email=mona%40example.com&confirm=true", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirm: want 200, got %d", resp.StatusCode)
	}
	msgs := fm.messages()
	if len(msgs) != 2 || msgs[1].To != "mona@example.com" {
		t.Fatalf("confirmation should send exactly one customer email, got %+v", msgs)
	}

	// token no longer resolves
	resp, _ = app.Test(httptest.NewRequest("GET", "/api/confirm-payment?id="+token+"&email=mona%40example.com&confirm=true", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("spent token: want 404, got %d", resp.StatusCode)
	}
}

func TestContactEndpoint(t *testing.T) {
	app, fm := newTestApp(t)

	resp, _ := app.Test(jsonReq("POST", "/api/contact", `{"name":"Mona"}`, ""))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing fields: want 400, got %d", resp.StatusCode)
	}

	resp, err := app.Test(jsonReq("POST", "/api/contact",
		`{"name":"Mona","email":"mona@example.com","message":"hello"}`, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("contact: want 200, got %d", resp.StatusCode)
	}
	msgs := fm.messages()
	if len(msgs) != 1 || msgs[0].To != "owner@shine.test" || msgs[0].ReplyTo != "mona@example.com" {
		t.Fatalf("bad contact email: %+v", msgs)
	}
	if !strings.Contains(msgs[0].Text, "hello") {
		t.Fatal("contact email missing message body")
	}
}

func TestPing(t *testing.T) {
	app, _ := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/ping", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
}

func TestAddProductRejectsTooManyImages(t *testing.T) {
	app, _ := newTestApp(t)
	adm := basicAuth("admin", "admin")

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range map[string]string{"title": "Ring", "price": "100", "category": "ring"} {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 9; i++ {
		fw, err := w.CreateFormFile("images", "img.jpg")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte("fake-jpeg-bytes")); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("POST", "/api/add-product", buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", adm)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("9 images: want 400, got %d body=%s", resp.StatusCode, body)
	}
	if got := readProducts(t, app).Products; len(got) != 0 {
		t.Fatalf("rejected product must not be stored, got %+v", got)
	}
}
