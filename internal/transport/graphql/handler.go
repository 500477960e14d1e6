package graphql

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	graphqlgo "github.com/graph-gophers/graphql-go"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"
	"go.uber.org/zap"

	"department-graphql/internal/core/apperr"
	mdw "department-graphql/internal/transport/http/middleware"
	resp "department-graphql/internal/transport/http/response"
)

const Path = "/graphql"

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler POST /graphql
type Handler struct {
	schema *graphqlgo.Schema
	dev    bool
	log    *zap.Logger
}

func NewHandler(schema *graphqlgo.Schema, dev bool, l *zap.Logger) *Handler {
	return &Handler{schema: schema, dev: dev, log: l.Named("graphql")}
}

func (h *Handler) Priority() int { return 10 }

func (h *Handler) Mount(g *gin.RouterGroup) {
	g.POST(Path, h.Serve)
}

func (h *Handler) Serve(c *gin.Context) {
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			resp.Abort(c, resp.CodeBadRequest, "request body too large")
			return
		}
		resp.Abort(c, resp.CodeBadRequest, "request body must be a JSON object with a query")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		resp.Abort(c, resp.CodeBadRequest, "query must not be empty")
		return
	}

	op := req.OperationName
	if op == "" {
		op = "anonymous"
	}
	c.Set(mdw.KeyOperation, op)

	ctx, roots := withRootFields(c.Request.Context())
	start := time.Now()
	result := h.schema.Exec(ctx, req.Query, req.OperationName, req.Variables)
	// operationName 由客户端任意指定，指标只按实际执行的根字段打标签
	field := roots.label()
	c.Set(mdw.KeyRootField, field)
	opLatency.WithLabelValues(field).Observe(time.Since(start).Seconds())

	outcome := "ok"
	if len(result.Errors) > 0 {
		outcome = "error"
		h.render(c, op, field, result.Errors)
	}
	opTotal.WithLabelValues(field, outcome).Inc()

	c.JSON(http.StatusOK, result)
}

// render 把解析器错误改写成统一的 message + extensions
func (h *Handler) render(c *gin.Context, op, field string, errs []*gqlerrors.QueryError) {
	for _, qe := range errs {
		var e resp.Error
		switch {
		case qe.ResolverError != nil:
			e = resp.FromError(qe.ResolverError, h.dev)
		case strings.HasPrefix(qe.Message, "panic occurred"):
			e = resp.FromError(apperr.New(apperr.Internal, "%s", qe.Message), h.dev)
		default:
			// 语法、校验、变量类型等请求错误，保留原文案
			e = resp.Error{Message: qe.Message, Extensions: resp.Extensions{
				Code:   resp.CodeBadRequest,
				Status: resp.CodeBadRequest.Status(),
				Reason: string(apperr.InvalidInput),
			}}
			if qe.Rule != "" && h.dev {
				e.Extensions.Details = map[string]any{"rule": qe.Rule}
			}
		}
		qe.Message = e.Message
		qe.Extensions = e.Extensions.Map()
		opErrors.WithLabelValues(field, string(e.Extensions.Code)).Inc()

		fields := []zap.Field{
			zap.String("rid", c.GetString(mdw.KeyRequestID)),
			zap.String("operation", op),
			zap.String("root_field", field),
			zap.String("code", string(e.Extensions.Code)),
			zap.Any("path", qe.Path),
		}
		if qe.ResolverError != nil {
			fields = append(fields,
				zap.String("reason", string(apperr.ReasonOf(qe.ResolverError))),
				zap.Error(qe.ResolverError))
		} else {
			fields = append(fields, zap.String("error", qe.Message))
		}
		if e.Extensions.Code == resp.CodeInternal {
			h.log.Error("graphql operation failed", fields...)
		} else {
			h.log.Info("graphql operation rejected", fields...)
		}
	}
}
