package e2e

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"

	"github.com/edavydova/shortlink/internal/config"
	"github.com/edavydova/shortlink/tests"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type APITestSuite struct {
	suite.Suite
	cfg     *config.Config
	db      *sqlx.DB
	baseURL string
}

func (suite *APITestSuite) SetupSuite() {
	root, err := tests.FindProjectRoot()
	if err != nil {
		suite.T().Fatalf("Failed to get project root: %v", err)
	}

	configPath := filepath.Join(root, os.Getenv("CONFIG_PATH"))

	suite.cfg, err = config.Load(configPath)
	if err != nil {
		suite.T().Fatalf("Failed to load config: %v", err)
	}

	suite.db, err = sqlx.Connect("pgx", suite.cfg.Postgres.DSN())
	if err != nil {
		suite.T().Fatalf("Failed to connect to database: %v", err)
	}
	suite.T().Cleanup(func() {
		suite.db.Close()
	})

	suite.baseURL = fmt.Sprintf("http://localhost:%d", suite.cfg.HTTPServer.Port)
}

func (suite *APITestSuite) TearDownSubTest() {
	_, err := suite.db.Exec(`TRUNCATE TABLE users RESTART IDENTITY CASCADE`)
	if err != nil {
		suite.T().Fatalf("Failed to clean users table: %v", err)
	}
}

// newClient returns a client with its own cookie jar, so each simulated
// account carries its own session.
func (suite *APITestSuite) newClient() *httpexpect.Expect {
	return httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  suite.baseURL,
		Reporter: httpexpect.NewAssertReporter(suite.T()),
		Client: &http.Client{
			Jar: httpexpect.NewCookieJar(),
		},
	})
}

func (suite *APITestSuite) register(e *httpexpect.Expect, username, password string) string {
	return e.POST("/api/users").
		WithJSON(map[string]string{
			"username": username,
			"password": password,
		}).
		Expect().
		Status(http.StatusCreated).
		JSON().Object().
		Value("data").Object().
		Value("user_id").String().Raw()
}

func (suite *APITestSuite) login(e *httpexpect.Expect, username, password string) {
	e.POST("/api/login").
		WithJSON(map[string]string{
			"username": username,
			"password": password,
		}).
		Expect().
		Status(http.StatusOK)
}

func (suite *APITestSuite) shorten(e *httpexpect.Expect, originalURL string) string {
	return e.POST("/api/links").
		WithJSON(map[string]string{
			"original_url": originalURL,
		}).
		Expect().
		Status(http.StatusCreated).
		JSON().Object().
		Value("data").Object().
		Value("link_id").String().Raw()
}

func (suite *APITestSuite) TestPing() {
	suite.Run("success", func() {
		suite.newClient().GET("/api/ping").
			Expect().
			Status(http.StatusOK).
			Text().IsEqual("pong\n")
	})
}

func (suite *APITestSuite) TestAccounts() {
	suite.Run("duplicate username", func() {
		e := suite.newClient()

		suite.register(e, "alice", "correct horse")

		e.POST("/api/users").
			WithJSON(map[string]string{
				"username": "alice",
				"password": "battery staple",
			}).
			Expect().
			Status(http.StatusConflict).
			JSON().Object().
			HasValue("status", "error")
	})

	suite.Run("wrong password and unknown username are indistinguishable", func() {
		e := suite.newClient()

		suite.register(e, "alice", "correct horse")

		wrongPassword := e.POST("/api/login").
			WithJSON(map[string]string{
				"username": "alice",
				"password": "wrong horse",
			}).
			Expect().
			Status(http.StatusForbidden).
			JSON().Object().
			Value("message").String().Raw()

		unknownUser := e.POST("/api/login").
			WithJSON(map[string]string{
				"username": "ghost",
				"password": "wrong horse",
			}).
			Expect().
			Status(http.StatusForbidden).
			JSON().Object().
			Value("message").String().Raw()

		suite.Equal(wrongPassword, unknownUser)
	})

	suite.Run("lookup by username", func() {
		e := suite.newClient()

		userID := suite.register(e, "alice", "correct horse")

		e.GET("/api/users/alice").
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("data").Object().
			HasValue("user_id", userID).
			HasValue("username", "alice").
			HasValue("link_count", 0)
	})
}

func (suite *APITestSuite) TestLinkLifecycle() {
	suite.Run("shorten, visit, list, delete", func() {
		alice := suite.newClient()

		userID := suite.register(alice, "alice", "correct horse")
		suite.login(alice, "alice", "correct horse")

		linkID := suite.shorten(alice, "https://example.com")

		// Re-shortening the same URL yields the same identifier.
		again := suite.shorten(alice, "https://example.com")
		suite.Equal(linkID, again)

		alice.GET("/" + linkID).
			WithRedirectPolicy(httpexpect.DontFollowRedirects).
			Expect().
			Status(http.StatusFound).
			Header("Location").IsEqual("https://example.com")

		alice.GET(fmt.Sprintf("/api/users/%s/links", userID)).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("data").Array().
			Value(0).Object().
			HasValue("link_id", linkID).
			HasValue("num_hits", 1)

		alice.DELETE(fmt.Sprintf("/api/users/%s/links/%s", userID, linkID)).
			Expect().
			Status(http.StatusOK)

		alice.GET("/" + linkID).
			WithRedirectPolicy(httpexpect.DontFollowRedirects).
			Expect().
			Status(http.StatusNotFound)
	})

	suite.Run("only the owner may delete", func() {
		alice := suite.newClient()
		bob := suite.newClient()

		aliceID := suite.register(alice, "alice", "correct horse")
		suite.login(alice, "alice", "correct horse")
		suite.register(bob, "bob", "battery staple")
		suite.login(bob, "bob", "battery staple")

		linkID := suite.shorten(alice, "https://example.com")

		bob.DELETE(fmt.Sprintf("/api/users/%s/links/%s", aliceID, linkID)).
			Expect().
			Status(http.StatusForbidden)

		alice.GET("/" + linkID).
			WithRedirectPolicy(httpexpect.DontFollowRedirects).
			Expect().
			Status(http.StatusFound)
	})

	suite.Run("visit statistics are hidden from other accounts", func() {
		alice := suite.newClient()
		bob := suite.newClient()

		aliceID := suite.register(alice, "alice", "correct horse")
		suite.login(alice, "alice", "correct horse")
		suite.register(bob, "bob", "battery staple")
		suite.login(bob, "bob", "battery staple")

		linkID := suite.shorten(alice, "https://example.com")

		bob.GET(fmt.Sprintf("/api/users/%s/links", aliceID)).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("data").Array().
			Value(0).Object().
			HasValue("link_id", linkID).
			NotContainsKey("num_hits").
			NotContainsKey("last_accessed_date")
	})

	suite.Run("unauthenticated requests are rejected", func() {
		e := suite.newClient()

		e.POST("/api/links").
			WithJSON(map[string]string{
				"original_url": "https://example.com",
			}).
			Expect().
			Status(http.StatusUnauthorized)
	})
}

func (suite *APITestSuite) TestFreeTierQuota() {
	suite.Run("sixth link is rejected", func() {
		alice := suite.newClient()

		suite.register(alice, "alice", "correct horse")
		suite.login(alice, "alice", "correct horse")

		for i := 0; i < 5; i++ {
			suite.shorten(alice, fmt.Sprintf("https://example.com/%d", i))
		}

		alice.POST("/api/links").
			WithJSON(map[string]string{
				"original_url": "https://example.com/5",
			}).
			Expect().
			Status(http.StatusForbidden).
			JSON().Object().
			HasValue("status", "error")
	})
}

func TestAPI(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
