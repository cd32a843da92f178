package deskapi_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-desk-go/library/catalog"
	"github.com/AntonStoeckl/library-desk-go/library/core"
	"github.com/AntonStoeckl/library-desk-go/library/desk"
	"github.com/AntonStoeckl/library-desk-go/library/deskapi"
	"github.com/AntonStoeckl/library-desk-go/library/shell"
	"github.com/AntonStoeckl/library-desk-go/recordstore/memengine"
)

const testPIN = "4711"

var apiNow = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

type errorBody struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func Test_Healthcheck(t *testing.T) {
	// arrange
	server := givenAPI(t)

	// act
	status, body := doRequest(t, server, http.MethodGet, "/v1/healthcheck", "", "")

	// assert
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"status": "available"`)
	assert.Contains(t, body, `"environment": "test"`)
}

func Test_Responses_AreIndentedJSON(t *testing.T) {
	// arrange
	server := givenAPI(t)

	// act
	healthStatus, healthBody := doRequest(t, server, http.MethodGet, "/v1/healthcheck", "", "")
	failureStatus, failureBody := doRequest(t, server, http.MethodPost, "/v1/loans", "", `{"isbn":"000-0","student":"001"}`)

	// assert
	assert.Equal(t, http.StatusOK, healthStatus)
	assert.True(t, strings.HasPrefix(healthBody, "{\n  \""), healthBody)
	assert.True(t, strings.HasSuffix(healthBody, "}\n"), healthBody)

	assert.Equal(t, http.StatusNotFound, failureStatus)
	assert.True(t, strings.HasPrefix(failureBody, "{\n  \"error\": {"), failureBody)
	assert.Equal(t, "UnknownBook", decodeError(t, failureBody).Error.Kind)
}

func Test_RegisterBook_RequiresPIN(t *testing.T) {
	testCases := []struct {
		name           string
		pin            string
		expectedStatus int
	}{
		{name: "missing pin", pin: "", expectedStatus: http.StatusUnauthorized},
		{name: "wrong pin", pin: "0000", expectedStatus: http.StatusUnauthorized},
		{name: "malformed pin", pin: "47a1", expectedStatus: http.StatusUnauthorized},
		{name: "correct pin", pin: testPIN, expectedStatus: http.StatusCreated},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			server := givenAPI(t)

			// act
			status, _ := doRequest(t, server, http.MethodPost, "/v1/books", tc.pin, `{"isbn":"978-1","title":"Dune"}`)

			// assert
			assert.Equal(t, tc.expectedStatus, status)
		})
	}
}

func Test_RegisterBook_ErrorKinds(t *testing.T) {
	testCases := []struct {
		name           string
		body           string
		expectedStatus int
		expectedKind   string
	}{
		{name: "blank isbn", body: `{"isbn":"  ","title":"x"}`, expectedStatus: http.StatusUnprocessableEntity, expectedKind: "InvalidInput"},
		{name: "duplicate", body: `{"isbn":"978-1","title":"Again"}`, expectedStatus: http.StatusConflict, expectedKind: "DuplicateIsbn"},
		{name: "unknown field", body: `{"isbn":"978-2","color":"red"}`, expectedStatus: http.StatusBadRequest, expectedKind: "BadRequest"},
		{name: "empty body", body: ``, expectedStatus: http.StatusBadRequest, expectedKind: "BadRequest"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			server := givenAPI(t)
			givenRegisteredBook(t, server, "978-1", "Dune")

			// act
			status, body := doRequest(t, server, http.MethodPost, "/v1/books", testPIN, tc.body)

			// assert
			assert.Equal(t, tc.expectedStatus, status)
			assert.Equal(t, tc.expectedKind, decodeError(t, body).Error.Kind)
		})
	}
}

func Test_RegisterBook_WithLookup(t *testing.T) {
	// arrange
	server := givenAPI(t)

	// act
	status, body := doRequest(t, server, http.MethodPost, "/v1/books", testPIN, `{"isbn":"978-7","lookup":true}`)

	// assert
	require.Equal(t, http.StatusCreated, status)
	assert.Contains(t, body, `"title": "Good Omens"`)
	assert.Contains(t, body, `"author": "Terry Pratchett"`)
}

func Test_Proposal(t *testing.T) {
	// arrange
	server := givenAPI(t)

	// act
	foundStatus, foundBody := doRequest(t, server, http.MethodGet, "/v1/books/978-7/proposal", testPIN, "")
	missingStatus, missingBody := doRequest(t, server, http.MethodGet, "/v1/books/978-9/proposal", testPIN, "")
	_, listBody := doRequest(t, server, http.MethodGet, "/v1/books", "", "")

	// assert
	assert.Equal(t, http.StatusOK, foundStatus)
	assert.Contains(t, foundBody, `"title": "Good Omens"`)
	assert.Equal(t, http.StatusNotFound, missingStatus)
	assert.Equal(t, "LookupUnavailable", decodeError(t, missingBody).Error.Kind)
	assert.NotContains(t, listBody, "978-7")
}

func Test_LendAndReturn(t *testing.T) {
	// arrange
	server := givenAPI(t)
	givenRegisteredBook(t, server, "978-1", "Dune")

	// act
	lendStatus, lendBody := doRequest(t, server, http.MethodPost, "/v1/loans", "", `{"isbn":"978-1","student":"001"}`)
	againStatus, againBody := doRequest(t, server, http.MethodPost, "/v1/loans", "", `{"isbn":"978-1","student":"002"}`)
	_, availabilityBody := doRequest(t, server, http.MethodGet, "/v1/books/978-1/availability", "", "")
	returnStatus, returnBody := doRequest(t, server, http.MethodPost, "/v1/loans/978-1/return", "", "")
	secondReturnStatus, secondReturnBody := doRequest(t, server, http.MethodPost, "/v1/loans/978-1/return", "", "")

	// assert
	assert.Equal(t, http.StatusCreated, lendStatus)
	assert.Contains(t, lendBody, `"studentName": "Ada Lovelace"`)
	assert.Contains(t, lendBody, `"dueAt": "2026-09-15T08:00:00Z"`)
	assert.Equal(t, http.StatusConflict, againStatus)
	assert.Equal(t, "AlreadyLent", decodeError(t, againBody).Error.Kind)
	assert.Contains(t, availabilityBody, `"available": false`)
	assert.Equal(t, http.StatusOK, returnStatus)
	assert.Contains(t, returnBody, `"returned": true`)
	assert.Equal(t, http.StatusConflict, secondReturnStatus)
	assert.Equal(t, "NoActiveLoan", decodeError(t, secondReturnBody).Error.Kind)
}

func Test_LendUnknownBook(t *testing.T) {
	// arrange
	server := givenAPI(t)

	// act
	status, body := doRequest(t, server, http.MethodPost, "/v1/loans", "", `{"isbn":"000-0","student":"001"}`)

	// assert
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "UnknownBook", decodeError(t, body).Error.Kind)
}

func Test_ListRecentBooks(t *testing.T) {
	// arrange
	server := givenAPI(t)
	givenRegisteredBook(t, server, "978-1", "Dune")
	givenRegisteredBook(t, server, "978-2", "Emma")
	givenRegisteredBook(t, server, "978-3", "Ulysses")

	// act
	status, body := doRequest(t, server, http.MethodGet, "/v1/books?limit=2", "", "")
	invalidStatus, _ := doRequest(t, server, http.MethodGet, "/v1/books?limit=-1", "", "")

	// assert
	require.Equal(t, http.StatusOK, status)
	assert.Less(t, strings.Index(body, "978-3"), strings.Index(body, "978-2"))
	assert.NotContains(t, body, "978-1")
	assert.Contains(t, body, `"available": true`)
	assert.Equal(t, http.StatusUnprocessableEntity, invalidStatus)
}

func Test_ListOverdue(t *testing.T) {
	// arrange
	server := givenAPI(t)
	givenRegisteredBook(t, server, "978-1", "")
	status, _ := doRequest(t, server, http.MethodPost, "/v1/loans", "", `{"isbn":"978-1","student":"042"}`)
	require.Equal(t, http.StatusCreated, status)

	// act
	lateStatus, lateBody := doRequest(t, server, http.MethodGet, "/v1/loans/overdue?asOf=2026-09-16T08:00:00Z", "", "")
	_, earlyBody := doRequest(t, server, http.MethodGet, "/v1/loans/overdue?asOf=2026-09-14", "", "")
	invalidStatus, _ := doRequest(t, server, http.MethodGet, "/v1/loans/overdue?asOf=soon", "", "")

	// assert
	assert.Equal(t, http.StatusOK, lateStatus)
	assert.Contains(t, lateBody, `"title": "(Unknown title)"`)
	assert.Contains(t, lateBody, `"studentName": "042"`)
	assert.Contains(t, earlyBody, `"overdue": []`)
	assert.Equal(t, http.StatusUnprocessableEntity, invalidStatus)
}

func Test_UnknownRoute(t *testing.T) {
	// arrange
	server := givenAPI(t)

	// act
	status, body := doRequest(t, server, http.MethodGet, "/v1/shelves", "", "")

	// assert
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NotFound", decodeError(t, body).Error.Kind)
}

func Test_PINGate(t *testing.T) {
	// arrange
	gate, err := deskapi.NewPINGate("1234")
	require.NoError(t, err)

	// act & assert
	assert.True(t, gate.Verify("1234"))
	assert.False(t, gate.Verify("4321"))
	assert.False(t, gate.Verify("12345"))

	_, err = deskapi.NewPINGate("12a4")
	assert.ErrorIs(t, err, deskapi.ErrInvalidPIN)
}

type catalogStub map[string]catalog.Metadata

func (c catalogStub) Lookup(_ context.Context, isbn string) (catalog.Metadata, bool) {
	metadata, ok := c[isbn]
	return metadata, ok
}

func givenAPI(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := memengine.NewStore()
	require.NoError(t, err)

	records, err := shell.NewRecords(store)
	require.NoError(t, err)

	service, err := desk.NewService(records,
		desk.WithClock(func() time.Time { return apiNow }),
		desk.WithCatalog(catalogStub{"978-7": {Title: "Good Omens", Author: "Terry Pratchett"}}),
		desk.WithStudents(core.StudentDirectory{"001": "Ada Lovelace"}),
	)
	require.NoError(t, err)

	gate, err := deskapi.NewPINGate(testPIN)
	require.NoError(t, err)

	handler, err := deskapi.New(service, deskapi.WithPINGate(gate), deskapi.WithSystemInfo("test", "1.0.0"))
	require.NoError(t, err)

	server := httptest.NewServer(handler.Routes())
	t.Cleanup(server.Close)

	return server
}

func givenRegisteredBook(t *testing.T, server *httptest.Server, isbn, title string) {
	t.Helper()

	status, body := doRequest(t, server, http.MethodPost, "/v1/books", testPIN, `{"isbn":"`+isbn+`","title":"`+title+`"}`)
	require.Equal(t, http.StatusCreated, status, body)
}

func doRequest(t *testing.T, server *httptest.Server, method, path, pin, body string) (int, string) {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, server.URL+path, strings.NewReader(body))
	require.NoError(t, err)

	if pin != "" {
		req.Header.Set(deskapi.PINHeader, pin)
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var content strings.Builder
	_, err = io.Copy(&content, resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, content.String()
}

func decodeError(t *testing.T, body string) errorBody {
	t.Helper()

	var decoded errorBody
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(body, &decoded))

	return decoded
}
