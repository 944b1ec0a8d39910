package relay

import (
	"net/http"

	"roombook/infras/otel"
	"roombook/internal/domains/relay/model/dto"
	"roombook/internal/domains/relay/service"
	"roombook/shared/constant"
	"roombook/shared/validator"
	"roombook/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type Handler struct {
	service service.Relay
	otel    otel.Otel
}

func New(service service.Relay, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

// Router mounts the relay with its own permissive CORS policy so browser preflights
// succeed whatever the application-wide policy is.
func (handler *Handler) Router(router chi.Router) {
	router.Group(func(routerGroup chi.Router) {
		routerGroup.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{constant.Asterix},
			AllowedMethods: []string{http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{constant.RequestHeaderContentType},
		}))

		routerGroup.Post("/relay", handler.Relay)
		routerGroup.Options("/relay", handler.Preflight)
	})
}

// Relay forwards a request to another origin and returns its answer unchanged.
// @Summary Relay a request
// @Description Forwards {url, method, headers, body} server side and returns the upstream
// @Description status, content type and body verbatim. The body is form-encoded unless
// @Description headers set Content-Type to application/json.
// @Tags Relay
// @Accept json
// @Param request body dto.RelayRequest true "Relay Request"
// @Success 200 {string} string "Upstream response"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/relay [post]
func (handler *Handler) Relay(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Relay")
	defer scope.End()

	req := dto.RelayRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		response.WithFailure(writer, err, "validate relay request")

		return
	}

	res, err := handler.service.Forward(ctx, req)
	if err != nil {
		scope.TraceError(err)
		response.WithFailure(writer, err, "relay request")

		return
	}

	scope.SetAttribute("http.upstream_status", res.StatusCode)

	response.WithRaw(writer, res.StatusCode, res.ContentType, res.Body)
}

// Preflight answers OPTIONS requests the CORS handler lets through.
func (handler *Handler) Preflight(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
}
