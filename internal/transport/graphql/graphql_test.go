package graphql

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"department-graphql/internal/core/auth"
	"department-graphql/internal/core/config"
	"department-graphql/internal/repo"
	"department-graphql/internal/repo/dbtest"
	"department-graphql/internal/service"
	"department-graphql/internal/transport/http/router"
)

type gqlError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path"`
	Extensions map[string]any `json:"extensions"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestServer(t *testing.T, dev bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	l := zap.NewNop()
	db := dbtest.Open(t)

	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: time.Hour}
	deptRepo := repo.NewDepartmentRepo(db)
	subRepo := repo.NewSubDepartmentRepo(db)
	authz := service.NewAuthorizer(deptRepo, subRepo)
	resolver := NewResolver(
		service.NewAuthService(repo.NewUserRepo(db), jwter, nil, service.AuthOptions{BcryptCost: bcrypt.MinCost}, l),
		service.NewDepartmentService(deptRepo, authz, l),
		service.NewSubDepartmentService(subRepo, authz, l),
	)
	schema, err := NewSchema(resolver, SchemaOptions{Introspection: true, MaxDepth: 8}, l)
	require.NoError(t, err)

	hc := config.HTTP{MaxBodyBytes: 1 << 20, RequestTimeoutSec: 10}
	engine := router.NewAPIEngine(l, hc, jwter, NewHandler(schema, dev, l))
	return &testServer{t: t, engine: engine}
}

func (s *testServer) do(token, query string, vars map[string]any) gqlResponse {
	s.t.Helper()
	return s.send(token, map[string]any{"query": query, "variables": vars})
}

func (s *testServer) send(token string, payload map[string]any) gqlResponse {
	s.t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(s.t, err)
	req := httptest.NewRequest(http.MethodPost, Path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var out gqlResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) ok(token, query string, vars map[string]any, into any) {
	s.t.Helper()
	res := s.do(token, query, vars)
	require.Empty(s.t, res.Errors, "unexpected errors: %+v", res.Errors)
	require.NoError(s.t, json.Unmarshal(res.Data, into))
}

func (s *testServer) code(token, query string, vars map[string]any) (string, string) {
	s.t.Helper()
	res := s.do(token, query, vars)
	require.NotEmpty(s.t, res.Errors, "expected an error, data=%s", res.Data)
	code, _ := res.Errors[0].Extensions["code"].(string)
	reason, _ := res.Errors[0].Extensions["reason"].(string)
	return code, reason
}

func (s *testServer) signUp(username string) string {
	s.t.Helper()
	vars := map[string]any{"in": map[string]any{"username": username, "password": "secret1"}}
	var reg struct{ Register struct{ ID string } }
	s.ok("", `mutation($in: RegisterInput!) { register(input: $in) { id } }`, vars, &reg)

	var login struct {
		Login struct {
			AccessToken string
			TokenType   string
			User        struct{ Username string }
		}
	}
	s.ok("", `mutation($in: LoginInput!) { login(input: $in) { accessToken tokenType user { username } } }`, vars, &login)
	require.Equal(s.t, "Bearer", login.Login.TokenType)
	require.Equal(s.t, username, login.Login.User.Username)
	return login.Login.AccessToken
}

const createDept = `mutation($in: CreateDepartmentInput!) {
  createDepartment(input: $in) { id name createdBy { username } subDepartments { id name } }
}`

type deptPayload struct {
	ID             string
	Name           string
	CreatedBy      struct{ Username string }
	SubDepartments []struct{ ID, Name string }
}

func TestEndToEnd(t *testing.T) {
	s := newTestServer(t, false)
	tok := s.signUp("alice")

	var me struct{ Me struct{ Username string } }
	s.ok(tok, `{ me { username } }`, nil, &me)
	assert.Equal(t, "alice", me.Me.Username)

	var created struct{ CreateDepartment deptPayload }
	s.ok(tok, createDept, map[string]any{"in": map[string]any{
		"name":           "Engineering",
		"subDepartments": []map[string]any{{"name": "Backend"}},
	}}, &created)
	d := created.CreateDepartment
	assert.Equal(t, "alice", d.CreatedBy.Username)
	require.Len(t, d.SubDepartments, 1)

	var one struct{ Department deptPayload }
	s.ok(tok, `query($id: ID!) { department(id: $id) { id name subDepartments { name } } }`,
		map[string]any{"id": d.ID}, &one)
	require.Len(t, one.Department.SubDepartments, 1)
	assert.Equal(t, "Backend", one.Department.SubDepartments[0].Name)

	var renamed struct{ UpdateDepartment deptPayload }
	s.ok(tok, `mutation($id: ID!) { updateDepartment(id: $id, input: {name: "Eng"}) { name } }`,
		map[string]any{"id": d.ID}, &renamed)
	assert.Equal(t, "Eng", renamed.UpdateDepartment.Name)

	var removed struct{ RemoveDepartment deptPayload }
	s.ok(tok, `mutation($id: ID!) { removeDepartment(id: $id) { name createdBy { username } subDepartments { name } } }`,
		map[string]any{"id": d.ID}, &removed)
	assert.Equal(t, "Eng", removed.RemoveDepartment.Name)
	assert.Equal(t, "alice", removed.RemoveDepartment.CreatedBy.Username)
	assert.Len(t, removed.RemoveDepartment.SubDepartments, 1)

	var subs struct {
		SubDepartments struct {
			Items      []struct{ ID string }
			Total      int
			TotalPages int
		}
	}
	s.ok(tok, `{ subDepartments { items { id } total totalPages } }`, nil, &subs)
	assert.Zero(t, subs.SubDepartments.Total)
	assert.Empty(t, subs.SubDepartments.Items)
	assert.Zero(t, subs.SubDepartments.TotalPages)

	code, reason := s.code(tok, `query($id: ID!) { department(id: $id) { id } }`, map[string]any{"id": d.ID})
	assert.Equal(t, "NOT_FOUND", code)
	assert.Equal(t, "DEPARTMENT_NOT_FOUND", reason)
}

func TestAuthenticationErrors(t *testing.T) {
	s := newTestServer(t, false)
	s.signUp("alice")

	code, reason := s.code("", `{ me { id } }`, nil)
	assert.Equal(t, "UNAUTHORIZED", code)
	assert.Equal(t, "MISSING_TOKEN", reason)

	code, reason = s.code("garbage", `{ departments { total } }`, nil)
	assert.Equal(t, "UNAUTHORIZED", code)
	assert.Equal(t, "INVALID_TOKEN", reason)

	wrong := s.do("", `mutation { login(input: {username: "alice", password: "wrong-pass"}) { accessToken } }`, nil)
	missing := s.do("", `mutation { login(input: {username: "mallory", password: "secret1"}) { accessToken } }`, nil)
	require.Len(t, wrong.Errors, 1)
	require.Len(t, missing.Errors, 1)
	assert.Equal(t, wrong.Errors[0].Message, missing.Errors[0].Message)
	assert.Equal(t, wrong.Errors[0].Extensions, missing.Errors[0].Extensions)
	assert.Equal(t, "UNAUTHORIZED", wrong.Errors[0].Extensions["code"])
	assert.EqualValues(t, 401, wrong.Errors[0].Extensions["status"])

	code, _ = s.code("", `mutation { register(input: {username: "alice", password: "whatever1"}) { id } }`, nil)
	assert.Equal(t, "CONFLICT", code)

	code, reason = s.code("", `mutation { register(input: {username: "bob", password: "123"}) { id } }`, nil)
	assert.Equal(t, "BAD_REQUEST", code)
	assert.Equal(t, "WEAK_PASSWORD", reason)
}

func TestOwnershipAcrossUsers(t *testing.T) {
	s := newTestServer(t, false)
	alice := s.signUp("alice")
	bob := s.signUp("bob")

	var created struct{ CreateDepartment deptPayload }
	s.ok(bob, createDept, map[string]any{"in": map[string]any{
		"name": "Finance", "subDepartments": []map[string]any{{"name": "Payroll"}},
	}}, &created)
	d := created.CreateDepartment

	code, _ := s.code(alice, `mutation($id: ID!) { updateDepartment(id: $id, input: {name: "Mine"}) { id } }`, map[string]any{"id": d.ID})
	assert.Equal(t, "FORBIDDEN", code)

	code, _ = s.code(alice, `mutation($id: ID!) { removeSubDepartment(id: $id) { id } }`, map[string]any{"id": d.SubDepartments[0].ID})
	assert.Equal(t, "FORBIDDEN", code)

	code, _ = s.code(alice, `mutation { updateDepartment(id: "nope", input: {name: "Mine"}) { id } }`, nil)
	assert.Equal(t, "NOT_FOUND", code)

	code, _ = s.code(alice, `mutation($id: ID!) { createSubDepartment(input: {departmentId: $id, name: "Audit"}) { id } }`, map[string]any{"id": d.ID})
	assert.Equal(t, "FORBIDDEN", code)

	// 同名部门允许出现在不同用户下
	var mine struct{ CreateDepartment deptPayload }
	s.ok(alice, createDept, map[string]any{"in": map[string]any{"name": "Finance"}}, &mine)

	code, reason := s.code(alice, createDept, map[string]any{"in": map[string]any{"name": "Finance"}})
	assert.Equal(t, "CONFLICT", code)
	assert.Equal(t, "NAME_CONFLICT", reason)

	var list struct {
		Departments struct {
			Items []struct{ Name string }
			Total int
		}
	}
	s.ok(alice, `{ departments { items { name } total } }`, nil, &list)
	assert.Equal(t, 1, list.Departments.Total)
}

func TestPaginationOverGraphQL(t *testing.T) {
	s := newTestServer(t, false)
	tok := s.signUp("alice")

	for i := 0; i < 25; i++ {
		var out struct{ CreateDepartment deptPayload }
		s.ok(tok, createDept, map[string]any{"in": map[string]any{"name": "Dept " + string(rune('A'+i))}}, &out)
	}

	type page struct {
		Departments struct {
			Items      []struct{ ID string }
			Total      int
			Page       int
			Limit      int
			TotalPages int
		}
	}
	q := `query($p: PaginationInput) { departments(pagination: $p) { items { id } total page limit totalPages } }`
	for _, tc := range []struct{ page, want int }{{1, 10}, {2, 10}, {3, 5}, {4, 0}} {
		var out page
		s.ok(tok, q, map[string]any{"p": map[string]any{"page": tc.page, "limit": 10}}, &out)
		assert.Len(t, out.Departments.Items, tc.want, "page %d", tc.page)
		assert.Equal(t, 25, out.Departments.Total)
		assert.Equal(t, 3, out.Departments.TotalPages)
		assert.Equal(t, tc.page, out.Departments.Page)
	}

	var def page
	s.ok(tok, q, nil, &def)
	assert.Equal(t, 1, def.Departments.Page)
	assert.Equal(t, 10, def.Departments.Limit)

	code, reason := s.code(tok, q, map[string]any{"p": map[string]any{"limit": 101}})
	assert.Equal(t, "BAD_REQUEST", code)
	assert.Equal(t, "LIMIT_OUT_OF_RANGE", reason)
}

func TestSubDepartmentOperations(t *testing.T) {
	s := newTestServer(t, false)
	tok := s.signUp("alice")

	var created struct{ CreateDepartment deptPayload }
	s.ok(tok, createDept, map[string]any{"in": map[string]any{"name": "Engineering"}}, &created)
	deptID := created.CreateDepartment.ID

	var sub struct {
		CreateSubDepartment struct {
			ID           string
			DepartmentID string
			Department   struct{ Name string }
		}
	}
	s.ok(tok, `mutation($id: ID!) { createSubDepartment(input: {departmentId: $id, name: "Backend"}) { id departmentId department { name } } }`,
		map[string]any{"id": deptID}, &sub)
	assert.Equal(t, deptID, sub.CreateSubDepartment.DepartmentID)
	assert.Equal(t, "Engineering", sub.CreateSubDepartment.Department.Name)

	code, _ := s.code(tok, `mutation($id: ID!) { createSubDepartment(input: {departmentId: $id, name: "Backend"}) { id } }`,
		map[string]any{"id": deptID})
	assert.Equal(t, "CONFLICT", code)

	var one struct {
		SubDepartment struct {
			Name       string
			Department struct{ SubDepartments []struct{ Name string } }
		}
	}
	s.ok(tok, `query($id: ID!) { subDepartment(id: $id) { name department { subDepartments { name } } } }`,
		map[string]any{"id": sub.CreateSubDepartment.ID}, &one)
	assert.Equal(t, "Backend", one.SubDepartment.Name)
	assert.Len(t, one.SubDepartment.Department.SubDepartments, 1)

	var upd struct{ UpdateSubDepartment struct{ Name string } }
	s.ok(tok, `mutation($id: ID!) { updateSubDepartment(id: $id, input: {name: "Platform"}) { name } }`,
		map[string]any{"id": sub.CreateSubDepartment.ID}, &upd)
	assert.Equal(t, "Platform", upd.UpdateSubDepartment.Name)

	var list struct{ SubDepartments struct{ Total int } }
	s.ok(tok, `query($d: ID) { subDepartments(departmentId: $d) { total } }`, map[string]any{"d": deptID}, &list)
	assert.Equal(t, 1, list.SubDepartments.Total)

	var rm struct{ RemoveSubDepartment struct{ Name string } }
	s.ok(tok, `mutation($id: ID!) { removeSubDepartment(id: $id) { name } }`,
		map[string]any{"id": sub.CreateSubDepartment.ID}, &rm)
	assert.Equal(t, "Platform", rm.RemoveSubDepartment.Name)

	code, reason := s.code(tok, `mutation { createSubDepartment(input: {departmentId: "x", name: "B"}) { id } }`, nil)
	assert.Equal(t, "BAD_REQUEST", code)
	assert.Equal(t, "INVALID_NAME", reason)
}

func TestRequestErrors(t *testing.T) {
	s := newTestServer(t, true)

	code, reason := s.code("", `{ nosuchfield }`, nil)
	assert.Equal(t, "BAD_REQUEST", code)
	assert.Equal(t, "INVALID_INPUT", reason)

	req := httptest.NewRequest(http.MethodPost, Path, bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "BAD_REQUEST")
}

func TestDevModeAddsDetails(t *testing.T) {
	s := newTestServer(t, true)
	tok := s.signUp("alice")

	res := s.do(tok, `mutation { updateDepartment(id: "nope", input: {name: "Mine"}) { id } }`, nil)
	require.Len(t, res.Errors, 1)
	details, ok := res.Errors[0].Extensions["details"].(map[string]any)
	require.True(t, ok, "%+v", res.Errors[0].Extensions)
	assert.Equal(t, "nope", details["id"])

	prod := newTestServer(t, false)
	ptok := prod.signUp("alice")
	res = prod.do(ptok, `mutation { updateDepartment(id: "nope", input: {name: "Mine"}) { id } }`, nil)
	require.Len(t, res.Errors, 1)
	assert.NotContains(t, res.Errors[0].Extensions, "details")
}

func TestOperationMetricsUseRootFields(t *testing.T) {
	s := newTestServer(t, false)
	token := s.signUp("alice")

	t.Run("client operation names never become labels", func(t *testing.T) {
		series := testutil.CollectAndCount(opTotal)
		latency := testutil.CollectAndCount(opLatency)
		for i := 0; i < 5; i++ {
			name := fmt.Sprintf("Op%d", i)
			s.send("", map[string]any{"query": "query " + name + " { __typename }", "operationName": name})
			s.send("", map[string]any{"query": "{ __typename }", "operationName": "Missing" + name})
		}
		assert.LessOrEqual(t, testutil.CollectAndCount(opTotal), series+2)
		assert.LessOrEqual(t, testutil.CollectAndCount(opLatency), latency+1)
	})

	t.Run("labelled by the root field that ran", func(t *testing.T) {
		before := testutil.ToFloat64(opTotal.WithLabelValues("departments", "ok"))
		res := s.send(token, map[string]any{
			"query":         "query AnyNameAtAll { departments { total } }",
			"operationName": "AnyNameAtAll",
		})
		require.Empty(t, res.Errors)
		assert.Equal(t, before+1, testutil.ToFloat64(opTotal.WithLabelValues("departments", "ok")))
	})

	t.Run("several root fields share one label", func(t *testing.T) {
		before := testutil.ToFloat64(opTotal.WithLabelValues("multiple", "ok"))
		res := s.do(token, "{ me { id } departments { total } }", nil)
		require.Empty(t, res.Errors)
		assert.Equal(t, before+1, testutil.ToFloat64(opTotal.WithLabelValues("multiple", "ok")))
	})

	t.Run("rejected requests count under none", func(t *testing.T) {
		before := testutil.ToFloat64(opErrors.WithLabelValues("none", "BAD_REQUEST"))
		s.send("", map[string]any{"query": "{ __typename }", "operationName": "Nope"})
		assert.Equal(t, before+1, testutil.ToFloat64(opErrors.WithLabelValues("none", "BAD_REQUEST")))
	})
}
