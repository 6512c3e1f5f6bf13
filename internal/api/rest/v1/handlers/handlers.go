// Package handlers provides API endpoint handling functionality.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	handlersErrors "github.com/danilovkiri/dk-go-snapreward/internal/api/rest/v1/errors"
	"github.com/danilovkiri/dk-go-snapreward/internal/config"
	"github.com/danilovkiri/dk-go-snapreward/internal/models/modeldto"
	"github.com/danilovkiri/dk-go-snapreward/internal/service/processor/v1"
	serviceErrors "github.com/danilovkiri/dk-go-snapreward/internal/service/processor/v1/errors"
	storageErrors "github.com/danilovkiri/dk-go-snapreward/internal/storage/v1/errors"
	"github.com/rs/zerolog"
)

// Handler defines attributes of a struct available to its methods.
type Handler struct {
	service      processor.Processor
	serverConfig *config.ServerConfig
	log          *zerolog.Logger
}

// InitHandlers initializes a handler object.
func InitHandlers(mainService processor.Processor, serverConfig *config.ServerConfig, log *zerolog.Logger) (*Handler, error) {
	if mainService == nil {
		return nil, &handlersErrors.HandlersFoundNilArgument{Msg: "nil processor was passed to handlers initializer"}
	}
	return &Handler{service: mainService, serverConfig: serverConfig, log: log}, nil
}

// HandleUpload processes screenshot upload requests.
func (h *Handler) HandleUpload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// the upload path waits for the outbound photo call before responding
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		file, header, err := r.FormFile("screenshot")
		if err != nil {
			h.log.Error().Err(err).Msg("HandleUpload failed")
			h.writeError(w, "no file", http.StatusBadRequest)
			return
		}
		defer file.Close()
		screenshot, err := io.ReadAll(file)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleUpload failed")
			h.writeError(w, "server error", http.StatusInternalServerError)
			return
		}
		username := r.FormValue("username")
		h.log.Info().Msg(fmt.Sprintf("new upload request detected for %s", username))
		result, err := h.service.AddScreenshot(ctx, username, screenshot, header.Filename)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleUpload failed")
			var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
			var capacityExceededError *storageErrors.CapacityExceededError
			if errors.As(err, &contextTimeoutExceededError) {
				h.writeError(w, err.Error(), http.StatusGatewayTimeout)
			} else if errors.As(err, &capacityExceededError) {
				h.writeError(w, "max screenshots reached", http.StatusBadRequest)
			} else {
				h.writeError(w, "server error", http.StatusInternalServerError)
			}
			return
		}
		h.writeJSON(w, result)
	}
}

// HandleGetBalance processes balance query requests.
func (h *Handler) HandleGetBalance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		username := r.URL.Query().Get("username")
		balance, err := h.service.GetBalance(ctx, username)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetBalance failed")
			var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
			if errors.As(err, &contextTimeoutExceededError) {
				h.writeError(w, err.Error(), http.StatusGatewayTimeout)
			} else {
				h.writeError(w, "server error", http.StatusInternalServerError)
			}
			return
		}
		h.writeJSON(w, balance)
	}
}

// HandleNewWithdrawal processes new withdrawal requests.
func (h *Handler) HandleNewWithdrawal() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		b, err := io.ReadAll(r.Body)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleNewWithdrawal failed")
			h.writeError(w, "server error", http.StatusInternalServerError)
			return
		}
		var newWithdrawal modeldto.NewWithdrawal
		err = json.Unmarshal(b, &newWithdrawal)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleNewWithdrawal failed")
			h.writeError(w, "username required", http.StatusBadRequest)
			return
		}
		h.log.Info().Msg(fmt.Sprintf("new withdrawal request detected for %s", newWithdrawal.Username))
		result, err := h.service.AddNewWithdrawal(ctx, newWithdrawal.Username)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleNewWithdrawal failed")
			var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
			var notEnoughFundsError *storageErrors.NotEnoughFundsError
			var serviceInvalidInput *serviceErrors.ServiceInvalidInput
			if errors.As(err, &contextTimeoutExceededError) {
				h.writeError(w, err.Error(), http.StatusGatewayTimeout)
			} else if errors.As(err, &serviceInvalidInput) {
				h.writeError(w, err.Error(), http.StatusBadRequest)
			} else if errors.As(err, &notEnoughFundsError) {
				h.writeError(w, fmt.Sprintf("minimum %v Taka required", notEnoughFundsError.Min), http.StatusBadRequest)
			} else {
				h.writeError(w, "server error", http.StatusInternalServerError)
			}
			return
		}
		h.writeJSON(w, result)
	}
}

// HandleUpdateWithdraw processes admin withdrawal status updates.
func (h *Handler) HandleUpdateWithdraw() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		secret := r.Header.Get("x-admin-secret")
		b, err := io.ReadAll(r.Body)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleUpdateWithdraw failed")
			h.writeError(w, "server error", http.StatusInternalServerError)
			return
		}
		var updateWithdraw modeldto.UpdateWithdraw
		err = json.Unmarshal(b, &updateWithdraw)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleUpdateWithdraw failed")
			h.writeError(w, "missing", http.StatusBadRequest)
			return
		}
		h.log.Info().Msg(fmt.Sprintf("withdrawal update request detected for %s", updateWithdraw.WithdrawID))
		result, err := h.service.UpdateWithdrawStatus(ctx, secret, updateWithdraw.Username, updateWithdraw.WithdrawID, updateWithdraw.Status)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleUpdateWithdraw failed")
			var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
			var notFoundError *storageErrors.NotFoundError
			var serviceInvalidInput *serviceErrors.ServiceInvalidInput
			var serviceForbidden *serviceErrors.ServiceForbidden
			if errors.As(err, &contextTimeoutExceededError) {
				h.writeError(w, err.Error(), http.StatusGatewayTimeout)
			} else if errors.As(err, &serviceForbidden) {
				h.writeError(w, "forbidden", http.StatusForbidden)
			} else if errors.As(err, &serviceInvalidInput) {
				h.writeError(w, err.Error(), http.StatusBadRequest)
			} else if errors.As(err, &notFoundError) {
				h.writeError(w, err.Error(), http.StatusNotFound)
			} else {
				h.writeError(w, "server error", http.StatusInternalServerError)
			}
			return
		}
		h.writeJSON(w, result)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, payload interface{}) {
	resBody, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Msg("response marshalling failed")
		h.writeError(w, "server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(resBody)
	if err != nil {
		h.log.Error().Err(err).Msg("response writing failed")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, msg string, code int) {
	resBody, _ := json.Marshal(modeldto.Error{Error: msg})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, err := w.Write(resBody)
	if err != nil {
		h.log.Error().Err(err).Msg("response writing failed")
	}
}
