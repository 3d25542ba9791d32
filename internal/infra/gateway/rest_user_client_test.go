package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/totegamma/orderdemo"
	"github.com/totegamma/orderdemo/client"
	"github.com/totegamma/orderdemo/internal/domain"
	"github.com/totegamma/orderdemo/internal/infra/repository"
	"github.com/totegamma/orderdemo/internal/present/rest"
	"github.com/totegamma/orderdemo/internal/usecase"
)

func fastOptions() client.Options {
	opts := client.DefaultOptions()
	opts.Retry = client.RetryPolicy{Period: time.Millisecond, MaxPeriod: 2 * time.Millisecond, MaxAttempts: 3}
	return opts
}

func newUserService(t *testing.T) *httptest.Server {
	t.Helper()
	uc := usecase.NewUserUsecase(repository.NewMemoryUserRepository(), nil)
	if err := uc.Seed(context.Background()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	e := echo.New()
	e.HTTPErrorHandler = rest.HTTPErrorHandler
	rest.NewUserHandler(uc).RegisterRoutes(e)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func TestRestUserClientContract(t *testing.T) {
	srv := newUserService(t)
	uc := NewRestUserClient(client.New(srv.URL, fastOptions()))
	ctx := context.Background()

	user, err := uc.GetUser(ctx, 2)
	if err != nil || user.ID != 2 || user.Email != "lee@example.com" {
		t.Fatalf("unexpected user %+v %v", user, err)
	}

	all, err := uc.GetAllUsers(ctx)
	if err != nil || len(all) != 3 || all[3].Name != "Park Minsu" {
		t.Fatalf("unexpected listing %v %v", all, err)
	}

	created, err := uc.CreateUser(ctx, orderdemo.User{ID: 10, Name: "Jung", Email: "jung@example.com"})
	if err != nil || created.ID != 10 {
		t.Fatalf("create failed: %+v %v", created, err)
	}
	fetched, err := uc.GetUser(ctx, 10)
	if err != nil || fetched != created {
		t.Fatalf("expected read-your-write, got %+v %v", fetched, err)
	}

	updated, err := uc.UpdateUser(ctx, 10, orderdemo.User{ID: 55, Name: "Jung Updated"})
	if err != nil || updated.ID != 10 {
		t.Fatalf("expected forced id, got %+v %v", updated, err)
	}
	fetched, _ = uc.GetUser(ctx, 10)
	if fetched.Name != "Jung Updated" {
		t.Fatalf("expected updated name, got %+v", fetched)
	}

	if err := uc.DeleteUser(ctx, 10); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := uc.DeleteUser(ctx, 10); err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
	if _, err := uc.GetUser(ctx, 10); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := uc.UpdateUser(ctx, 10, orderdemo.User{Name: "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}

func TestRestUserClientRecoversAfterTransientFailures(t *testing.T) {
	backend := newUserService(t)

	var hits int32
	flaky := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		resp, err := http.Get(backend.URL + r.URL.Path)
		if err != nil {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		defer resp.Body.Close()
		w.Header().Set("Content-Type", resp.Header.Get("Content-Type"))
		w.WriteHeader(resp.StatusCode)
		io.Copy(w, resp.Body)
	}))
	defer flaky.Close()

	uc := NewRestUserClient(client.New(flaky.URL, fastOptions()))
	user, err := uc.GetUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected success on the third attempt, got %v", err)
	}
	if user.ID != 1 || hits != 3 {
		t.Fatalf("unexpected result %+v after %d attempts", user, hits)
	}
}

func TestRestUserClientUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	uc := NewRestUserClient(client.New(url, fastOptions()))
	_, err := uc.GetUser(context.Background(), 1)
	if !errors.Is(err, domain.ErrRemoteUnavailable) {
		t.Fatalf("expected remote unavailable, got %v", err)
	}
	var unavailable domain.RemoteUnavailableError
	if !errors.As(err, &unavailable) || unavailable.Attempts != 3 || unavailable.Service != orderdemo.UserServiceName {
		t.Fatalf("unexpected error detail %+v", unavailable)
	}
	if errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("a transport failure must not look like not found")
	}
}

func TestRestUserClientPermanentStatus(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	uc := NewRestUserClient(client.New(srv.URL, fastOptions()))
	_, err := uc.GetUser(context.Background(), 1)
	if err == nil || errors.Is(err, domain.ErrRemoteUnavailable) || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected a plain error, got %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected no retry on 500, got %d attempts", hits)
	}
}

func TestRestUserClientDuplicateEmail(t *testing.T) {
	srv := newUserService(t)
	uc := NewRestUserClient(client.New(srv.URL, fastOptions()))

	_, err := uc.CreateUser(context.Background(), orderdemo.User{ID: 7, Name: "Fake", Email: "park@example.com"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}
}
