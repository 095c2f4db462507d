package format

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/tryfix/log"
	"github.com/tryfix/sourceformat/api"
)

type Err struct {
	Err string `json:"error"`
}

type handler struct {
	format *SourceFormat
	logger log.Logger
}

func (h *handler) encodeError(w http.ResponseWriter, status int, e error) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Err{Err: e.Error()}); err != nil {
		h.logger.Error(err)
	}
}

func (h *handler) operations(writer http.ResponseWriter, request *http.Request) {
	writer.Header().Set("Content-Type", "application/json")

	req := new(api.OperationRequest)
	if err := json.NewDecoder(request.Body).Decode(req); err != nil {
		h.encodeError(writer, http.StatusBadRequest, err)
		return
	}

	res, err := h.format.PerformSourceOperation(request.Context(), req)
	if err == ErrUnsupportedOperation || isInvalidSource(err) {
		h.encodeError(writer, http.StatusBadRequest, err)
		return
	}

	if err != nil {
		h.logger.Error(fmt.Sprintf(`source operation [%s] failed due to %s`, req.Kind, err))
		h.encodeError(writer, http.StatusInternalServerError, err)
		return
	}

	if err := json.NewEncoder(writer).Encode(res); err != nil {
		h.logger.Error(err)
	}
}

func (h *handler) types(writer http.ResponseWriter, _ *http.Request) {
	writer.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(writer).Encode(h.format.codec.Registry().Tags()); err != nil {
		h.logger.Error(err)
	}
}

// NewRouter exposes the format over http:
//
//	POST /source/operations   api.OperationRequest -> api.OperationResponse
//	GET  /source/types        registered source types
func NewRouter(format *SourceFormat, logger log.Logger) *mux.Router {
	h := &handler{
		format: format,
		logger: logger,
	}

	r := mux.NewRouter()
	r.HandleFunc(`/source/operations`, h.operations).Methods(http.MethodPost)
	r.HandleFunc(`/source/types`, h.types).Methods(http.MethodGet)

	return r
}

func MakeEndpoints(host string, format *SourceFormat, logger log.Logger) {
	logger = logger.NewLog(log.Prefixed(`http`))
	r := NewRouter(format, logger)

	go func() {
		err := http.ListenAndServe(host, handlers.CORS()(r))
		if err != nil {
			logger.Error(fmt.Sprintf(`Cannot start web server : %+v`, err))
		}
	}()

	logger.Info(fmt.Sprintf(`Http server started on %s`, host))
}
