package clients

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cafe-pos/config"
	"cafe-pos/models"

	"github.com/shopspring/decimal"
)

type staticToken string

func (s staticToken) Token(ctx context.Context) (string, error) { return string(s), nil }

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(config.APIConfig{
		BaseURL:      srv.URL + "/api",
		ImageBaseURL: "https://img.example",
		MakerID:      "47",
		Timeout:      2 * time.Second,
	})
	return c.WithTokens(staticToken("tok"))
}

func TestFetchMenu_ValidatesRowsAndSendsHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/menu" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("makerID"); got != "47" {
			t.Errorf("makerID = %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
		w.Write([]byte(`{"status":"success","data":[
			{"menu_id":1,"menu_name":"Nasi Goreng","price":"15000","type":"FOOD","menu_description":"fried rice","menu_image_name":"img/nasgor.jpg"},
			{"menu_id":"2","menu_name":"Es Teh","price":5000,"type":"drink","menu_description":"","menu_image_name":""},
			{"menu_id":3,"menu_name":"Cake","price":1000,"type":"DESSERT"},
			{"menu_id":4,"menu_name":"","price":1000,"type":"FOOD"},
			{"menu_id":5,"menu_name":"Refund","price":-1,"type":"FOOD"}
		]}`))
	})

	items, err := c.FetchMenu(context.Background())
	if err != nil {
		t.Fatalf("FetchMenu: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(items), items)
	}
	if items[0].ID != "1" || items[0].Category != models.CategoryFood || items[0].Price.IntPart() != 15000 {
		t.Errorf("first item = %+v", items[0])
	}
	if items[0].ImageURL != "https://img.example/img/nasgor.jpg" {
		t.Errorf("ImageURL = %q", items[0].ImageURL)
	}
	if items[1].ID != "2" || items[1].Category != models.CategoryDrink {
		t.Errorf("second item = %+v", items[1])
	}
}

func TestFetchTables_AcceptsBareArrayAndStringFlags(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"table_id":1,"table_number":"A1","is_available":"true"},
			{"table_id":2,"table_number":"A2","is_available":"false"},
			{"table_id":3,"table_number":3,"is_available":true}
		]`))
	})
	tables, err := c.FetchTables(context.Background())
	if err != nil {
		t.Fatalf("FetchTables: %v", err)
	}
	if len(tables) != 3 {
		t.Fatalf("got %d tables", len(tables))
	}
	want := []models.Table{{ID: "1", Number: "A1", Available: true}, {ID: "2", Number: "A2"}, {ID: "3", Number: "3", Available: true}}
	for i := range want {
		if tables[i] != want[i] {
			t.Errorf("tables[%d] = %+v, want %+v", i, tables[i], want[i])
		}
	}
}

func TestFetchTables_Envelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":[{"table_id":"9","table_number":"9","is_available":0}]}`))
	})
	tables, err := c.FetchTables(context.Background())
	if err != nil {
		t.Fatalf("FetchTables: %v", err)
	}
	if len(tables) != 1 || tables[0].Available {
		t.Errorf("tables = %+v", tables)
	}
}

func TestCreateOrder_PayloadAndSuccess(t *testing.T) {
	var got wireCreateOrder
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/order" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Write([]byte(`{"status":"success","message":"Order created","data":{"order_id":77,"order_date":"2024-05-01","customer_name":"Budi","table_id":4,"table_number":"A4"}}`))
	})

	placed, err := c.CreateOrder(context.Background(), models.CreateOrderInput{
		CustomerName: "  Budi ",
		TableID:      "4",
		Lines:        []models.OrderLine{{MenuID: "1", Quantity: 1}, {MenuID: "2", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if got.CustomerName != "Budi" || got.TableID != "4" || len(got.OrderDetail) != 2 {
		t.Errorf("payload = %+v", got)
	}
	if got.OrderDetail[1].MenuID != "2" || got.OrderDetail[1].Quantity != 2 {
		t.Errorf("second line = %+v", got.OrderDetail[1])
	}
	if placed.ID != "77" || placed.TableNumber != "A4" || placed.OrderDate.Format("2006-01-02") != "2024-05-01" {
		t.Errorf("placed = %+v", placed)
	}
}

func TestCreateOrder_FailureStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"failed","message":"Table is occupied"}`))
	})
	_, err := c.CreateOrder(context.Background(), models.CreateOrderInput{
		CustomerName: "Budi", TableID: "4", Lines: []models.OrderLine{{MenuID: "1", Quantity: 1}},
	})
	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *ServerError", err)
	}
	if se.Message != "Table is occupied" {
		t.Errorf("Message = %q", se.Message)
	}
}

func TestCreateOrder_RejectsBadLinesWithoutCalling(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })
	_, err := c.CreateOrder(context.Background(), models.CreateOrderInput{
		CustomerName: "Budi", TableID: "4", Lines: []models.OrderLine{{MenuID: "1", Quantity: 0}},
	})
	var ve models.ValidationError
	if !errors.As(err, &ve) || ve.Field != "order_detail[0].quantity" {
		t.Errorf("err = %v", err)
	}
	if called {
		t.Error("server was called for an invalid payload")
	}
}

func TestDo_ErrorTaxonomy(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Token expired"}`))
		})
		_, err := c.FetchMenu(context.Background())
		if !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("err = %v, want ErrUnauthenticated", err)
		}
	})
	t.Run("server error with message", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"status":"error","message":"database down"}`))
		})
		_, err := c.FetchTables(context.Background())
		var se *ServerError
		if !errors.As(err, &se) || se.Message != "database down" || se.StatusCode != 500 {
			t.Errorf("err = %v", err)
		}
	})
	t.Run("transport", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()
		c := NewClient(config.APIConfig{BaseURL: srv.URL, Timeout: time.Second}).WithTokens(staticToken("tok"))
		_, err := c.FetchMenu(context.Background())
		if !errors.Is(err, ErrTransport) {
			t.Errorf("err = %v, want ErrTransport", err)
		}
	})
	t.Run("no token source", func(t *testing.T) {
		c := NewClient(config.APIConfig{BaseURL: "http://127.0.0.1:1"})
		_, err := c.FetchMenu(context.Background())
		if !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("err = %v, want ErrUnauthenticated", err)
		}
	})
}

func TestLogin(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "" {
				t.Error("login must not send a bearer token")
			}
			w.Write([]byte(`{"access_token":"abc","user":{"user_id":12,"user_name":"Siti","username":"siti","role":"Cashier"}}`))
		})
		res, err := c.Login(context.Background(), "siti", "secret")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if res.AccessToken != "abc" || res.User.ID != "12" || res.User.Role != models.RoleCashier || res.User.DisplayName != "Siti" {
			t.Errorf("res = %+v", res)
		}
	})
	t.Run("wrong password", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"status":"error","message":"Invalid credentials"}`))
		})
		_, err := c.Login(context.Background(), "siti", "nope")
		var se *ServerError
		if !errors.As(err, &se) || se.Message != "Invalid credentials" {
			t.Errorf("err = %v", err)
		}
	})
}

func TestSearchPath(t *testing.T) {
	day := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		q    models.OrderSearch
		want string
	}{
		{models.OrderSearch{}, "/order"},
		{models.OrderSearch{Date: day}, "/order/searchbydate/2024-05-01"},
		{models.OrderSearch{Key: "budi"}, "/order/search/budi"},
		{models.OrderSearch{Date: day, Key: "es teh"}, "/order/searchbydateandkey/2024-05-01/es%20teh"},
	}
	for _, tt := range tests {
		if got := searchPath(tt.q); got != tt.want {
			t.Errorf("searchPath(%+v) = %q, want %q", tt.q, got, tt.want)
		}
	}
}

func TestOrderDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orderdetail/77" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"success","data":[{"id":1,"menu_name":"Es Teh","quantity":"2","price":"5000","order_detail_price":"10000"},{"id":2,"menu_name":"Rawon","quantity":1,"price":15000}],"total_price":25000}`))
	})
	d, err := c.OrderDetail(context.Background(), "77")
	if err != nil {
		t.Fatalf("OrderDetail: %v", err)
	}
	if len(d.Lines) != 2 || d.Lines[0].Quantity != 2 || d.Lines[1].LineTotal.IntPart() != 15000 || d.TotalPrice.IntPart() != 25000 {
		t.Errorf("detail = %+v", d)
	}
}

func TestListEndpoints_FailedAndMalformedResponses(t *testing.T) {
	calls := map[string]func(c *Client) error{
		"menu": func(c *Client) error {
			_, err := c.FetchMenu(context.Background())
			return err
		},
		"tables": func(c *Client) error {
			_, err := c.FetchTables(context.Background())
			return err
		},
		"users": func(c *Client) error {
			_, err := c.ListUsers(context.Background())
			return err
		},
		"orders": func(c *Client) error {
			_, err := c.SearchOrders(context.Background(), models.OrderSearch{Key: "budi"})
			return err
		},
	}
	bodies := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"failed status", `{"status":"failed","message":"maker not found","data":null}`, "maker not found"},
		{"failed status without data", `{"status":"error","message":"maker not found"}`, "maker not found"},
		{"data is an object", `{"status":"success","data":{"x":1}}`, "has an unexpected format"},
		{"no status and no data", `{"message":"hello"}`, "has an unexpected format"},
		{"not json", `<html>gateway</html>`, ""},
	}
	for endpoint, call := range calls {
		for _, b := range bodies {
			t.Run(endpoint+"/"+b.name, func(t *testing.T) {
				c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte(b.body))
				})
				err := call(c)
				var se *ServerError
				if !errors.As(err, &se) {
					t.Fatalf("err = %v, want *ServerError", err)
				}
				if b.wantMsg != "" && !strings.Contains(se.Message, b.wantMsg) {
					t.Errorf("Message = %q, want it to contain %q", se.Message, b.wantMsg)
				}
			})
		}
	}
}

func TestListEndpoints_SuccessWithoutData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":null}`))
	})
	tables, err := c.FetchTables(context.Background())
	if err != nil || len(tables) != 0 {
		t.Errorf("FetchTables = %v, %v", tables, err)
	}
	orders, err := c.SearchOrders(context.Background(), models.OrderSearch{})
	if err != nil || len(orders) != 0 {
		t.Errorf("SearchOrders = %v, %v", orders, err)
	}
}

func TestFetchTables_SkipsRowWithBadFlag(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":[
			{"table_id":1,"table_number":"A1","is_available":"true"},
			{"table_id":2,"table_number":"A2","is_available":"yes"},
			{"table_id":3,"table_number":"A3","is_available":false}
		]}`))
	})
	tables, err := c.FetchTables(context.Background())
	if err != nil {
		t.Fatalf("FetchTables: %v", err)
	}
	want := []models.Table{{ID: "1", Number: "A1", Available: true}, {ID: "3", Number: "A3"}}
	if len(tables) != len(want) {
		t.Fatalf("tables = %+v, want %+v", tables, want)
	}
	for i := range want {
		if tables[i] != want[i] {
			t.Errorf("tables[%d] = %+v, want %+v", i, tables[i], want[i])
		}
	}
}

func TestRegisterUser(t *testing.T) {
	t.Run("sends urlencoded form", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/api/register" {
				t.Errorf("%s %s", r.Method, r.URL.Path)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
				t.Errorf("Content-Type = %q", ct)
			}
			if r.Header.Get("Authorization") != "Bearer tok" {
				t.Error("register must be authenticated")
			}
			if err := r.ParseForm(); err != nil {
				t.Fatal(err)
			}
			if r.PostForm.Get("user_name") != "Siti Aminah" || r.PostForm.Get("username") != "siti" ||
				r.PostForm.Get("password") != "s3cret" || r.PostForm.Get("role") != "cashier" {
				t.Errorf("form = %v", r.PostForm)
			}
			w.Write([]byte(`{"status":"success","message":"User registered"}`))
		})
		err := c.RegisterUser(context.Background(), models.NewUser{
			DisplayName: " Siti Aminah ", Username: "siti", Password: "s3cret", Role: "Cashier",
		})
		if err != nil {
			t.Fatalf("RegisterUser: %v", err)
		}
	})
	t.Run("failed status", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"failed","message":"Username already taken"}`))
		})
		err := c.RegisterUser(context.Background(), models.NewUser{
			DisplayName: "Siti", Username: "siti", Password: "x", Role: "admin",
		})
		var se *ServerError
		if !errors.As(err, &se) || se.Message != "Username already taken" {
			t.Errorf("err = %v", err)
		}
	})
	t.Run("rejects unknown role without calling", func(t *testing.T) {
		called := false
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })
		err := c.RegisterUser(context.Background(), models.NewUser{
			DisplayName: "Siti", Username: "siti", Password: "x", Role: "owner",
		})
		var ve models.ValidationError
		if !errors.As(err, &ve) || ve.Field != "role" {
			t.Errorf("err = %v", err)
		}
		if called {
			t.Error("server was called")
		}
	})
}

func TestGetUser(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare object", `{"user_id":12,"user_name":"Siti","username":"siti","role":"MANAGER"}`},
		{"envelope", `{"status":"success","data":{"user_id":"12","user_name":"Siti","username":"siti","role":"manager"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/user/12" {
					t.Errorf("path = %s", r.URL.Path)
				}
				w.Write([]byte(tt.body))
			})
			u, err := c.GetUser(context.Background(), "12")
			if err != nil {
				t.Fatalf("GetUser: %v", err)
			}
			want := models.User{ID: "12", Username: "siti", DisplayName: "Siti", Role: models.RoleManager}
			if *u != want {
				t.Errorf("user = %+v, want %+v", *u, want)
			}
		})
	}
}

func TestUpdateUser(t *testing.T) {
	var got wireUserUpdate
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/user/12" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
	})
	err := c.UpdateUser(context.Background(), "12", models.UserUpdate{DisplayName: "Siti A", Username: "siti", Role: "Admin"})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if got != (wireUserUpdate{UserName: "Siti A", Role: "admin", Username: "siti"}) {
		t.Errorf("payload = %+v", got)
	}

	err = c.UpdateUser(context.Background(), "12", models.UserUpdate{DisplayName: "Siti", Role: "admin"})
	var ve models.ValidationError
	if !errors.As(err, &ve) || ve.Field != "username" {
		t.Errorf("missing username: err = %v", err)
	}
}

func TestCreateMenuItem(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/menu" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		for field, want := range map[string]string{
			"menu_name": "Es Jeruk", "type": "DRINK", "menu_description": "fresh orange", "price": "8000",
		} {
			if got := r.FormValue(field); got != want {
				t.Errorf("%s = %q, want %q", field, got, want)
			}
		}
		f, fh, err := r.FormFile("menu_image_name")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if fh.Filename != "jeruk.png" || string(data) != string(png) {
			t.Errorf("file %q = %q", fh.Filename, data)
		}
		if ct := fh.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("file Content-Type = %q", ct)
		}
		w.Write([]byte(`{"status":"success"}`))
	})
	err := c.CreateMenuItem(context.Background(), models.NewMenuItem{
		MenuUpdate: models.MenuUpdate{Name: "Es Jeruk", Price: decimal.NewFromInt(8000), Category: models.CategoryDrink, Description: "fresh orange"},
		ImageName:  "photos/jeruk.png",
		Image:      png,
	})
	if err != nil {
		t.Fatalf("CreateMenuItem: %v", err)
	}

	err = c.CreateMenuItem(context.Background(), models.NewMenuItem{
		MenuUpdate: models.MenuUpdate{Name: "Es Jeruk", Price: decimal.NewFromInt(8000), Category: models.CategoryDrink},
	})
	var ve models.ValidationError
	if !errors.As(err, &ve) || ve.Field != "menu_image_name" {
		t.Errorf("missing picture: err = %v", err)
	}
}
