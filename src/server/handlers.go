package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"license-desk/src/request"
	"license-desk/src/validate"

	"github.com/gorilla/mux"
)

func health(w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(200)
	w.Write([]byte("All Good ☮️"))
}

// handleSubmit is the public intake endpoint: validate, persist, then attempt
// the two notifications. Submission success is defined by persistence success
// alone; send failures are logged and the response stays a success.
func (s *Serve) handleSubmit(w http.ResponseWriter, req *http.Request) {
	var sub validate.Submission

	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(&sub); err != nil {
		writeError(http.StatusBadRequest, "Invalid request.", w)
		return
	}

	fields, err := validate.Request(&sub)
	if err != nil {
		var fieldErr *validate.FieldError
		if errors.As(err, &fieldErr) {
			writeError(http.StatusBadRequest, fieldErr.Error(), w)
			return
		}
		writeError(http.StatusBadRequest, "Invalid license type.", w)
		return
	}

	lr, err := s.store.Create(fields)
	if err != nil {
		logger.Error().Msgf("error storing license request: %v", err)
		writeError(http.StatusInternalServerError, "Something went wrong.", w)
		return
	}

	if err := s.mailer.AdminNewRequest(lr); err != nil {
		logger.Error().Msgf("error sending admin alert for request %d: %v", lr.ID, err)
	}
	if err := s.mailer.RequesterConfirmation(lr); err != nil {
		logger.Error().Msgf("error sending confirmation for request %d: %v", lr.ID, err)
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "License request submitted! Check your email for confirmation.",
	})
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRes struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

func (s *Serve) handleLogin(w http.ResponseWriter, req *http.Request) {
	var creds loginReq

	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(&creds); err != nil {
		writeError(http.StatusBadRequest, "Invalid request.", w)
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(creds.Username), []byte(s.cfg.AdminUser))
	passOK := subtle.ConstantTimeCompare([]byte(creds.Password), []byte(s.cfg.AdminPassword))
	if userOK&passOK != 1 {
		writeError(http.StatusUnauthorized, "Invalid username or password.", w)
		return
	}

	writeJSON(w, http.StatusOK, loginRes{Success: true, Token: s.sessions.Issue()})
}

func (s *Serve) handleLogout(w http.ResponseWriter, req *http.Request) {
	s.sessions.Revoke(bearerToken(req))
	writeJSON(w, http.StatusOK, Response{Success: true})
}

type listRes struct {
	Success  bool                     `json:"success"`
	Requests []request.LicenseRequest `json:"requests"`
}

func (s *Serve) handleListRequests(w http.ResponseWriter, req *http.Request) {
	statusFilter := req.URL.Query().Get("status")

	reqs, err := s.store.List(statusFilter)
	if err != nil {
		logger.Error().Msgf("error listing license requests: %v", err)
		writeError(http.StatusInternalServerError, "Something went wrong.", w)
		return
	}

	writeJSON(w, http.StatusOK, listRes{Success: true, Requests: reqs})
}

func (s *Serve) handleGetRequest(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(req)["id"], 10, 64)

	lr, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, request.ErrNotFound) {
			writeError(http.StatusNotFound, "Request not found.", w)
			return
		}
		logger.Error().Msgf("error fetching license request %d: %v", id, err)
		writeError(http.StatusInternalServerError, "Something went wrong.", w)
		return
	}

	writeJSON(w, http.StatusOK, getRes{Success: true, Request: lr})
}

type getRes struct {
	Success bool                    `json:"success"`
	Request *request.LicenseRequest `json:"request"`
}

type statusReq struct {
	Status string `json:"status"`
}

func (s *Serve) handleUpdateStatus(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(req)["id"], 10, 64)

	var body statusReq
	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(&body); err != nil {
		writeError(http.StatusBadRequest, "Invalid request.", w)
		return
	}

	if err := s.store.UpdateStatus(id, body.Status); err != nil {
		switch {
		case errors.Is(err, request.ErrInvalidStatus):
			writeError(http.StatusBadRequest, "Invalid status.", w)
		case errors.Is(err, request.ErrNotFound):
			writeError(http.StatusNotFound, "Request not found.", w)
		default:
			logger.Error().Msgf("error updating status of request %d: %v", id, err)
			writeError(http.StatusInternalServerError, "Something went wrong.", w)
		}
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true})
}

// handleSendInvoice renders and emails an invoice for one request. Unlike the
// submission notifications, a transport failure here is the outcome of the
// operation.
func (s *Serve) handleSendInvoice(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(req)["id"], 10, 64)

	lr, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, request.ErrNotFound) {
			writeError(http.StatusNotFound, "Request not found.", w)
			return
		}
		logger.Error().Msgf("error fetching license request %d: %v", id, err)
		writeError(http.StatusInternalServerError, "Something went wrong.", w)
		return
	}

	// A malformed or absent body leaves the zero value, which fails the
	// required-field checks below.
	var inv validate.Invoice
	decoder := json.NewDecoder(req.Body)
	_ = decoder.Decode(&inv)

	if err := validate.InvoiceFields(&inv); err != nil {
		writeError(http.StatusBadRequest, err.Error(), w)
		return
	}

	if err := s.mailer.Invoice(lr, &inv); err != nil {
		logger.Error().Msgf("error sending invoice for request %d: %v", id, err)
		writeError(http.StatusBadGateway, fmt.Sprintf("Email not sent: %v", err), w)
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: fmt.Sprintf("Invoice sent to %s", lr.FacilityEmail),
	})
}

type dashboardRes struct {
	Success        bool                     `json:"success"`
	Counts         request.Counts           `json:"counts"`
	ByType         []request.TypeCount      `json:"by_type"`
	Recent         []request.LicenseRequest `json:"recent"`
	MailConfigured bool                     `json:"mail_configured"`
}

func (s *Serve) handleDashboard(w http.ResponseWriter, req *http.Request) {
	counts, err := s.store.Counts()
	if err != nil {
		logger.Error().Msgf("error aggregating counts: %v", err)
		writeError(http.StatusInternalServerError, "Something went wrong.", w)
		return
	}

	byType, err := s.store.CountByType()
	if err != nil {
		logger.Error().Msgf("error grouping by license type: %v", err)
		writeError(http.StatusInternalServerError, "Something went wrong.", w)
		return
	}

	recent, err := s.store.Recent(5)
	if err != nil {
		logger.Error().Msgf("error listing recent requests: %v", err)
		writeError(http.StatusInternalServerError, "Something went wrong.", w)
		return
	}

	writeJSON(w, http.StatusOK, dashboardRes{
		Success:        true,
		Counts:         counts,
		ByType:         byType,
		Recent:         recent,
		MailConfigured: s.mailOK,
	})
}
