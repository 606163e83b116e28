package service

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/finchat/backend/internal/domain"
	"github.com/finchat/backend/internal/ingest"
	"github.com/finchat/backend/internal/session"
)

// Handler serves the JSON API. Each request resolves a session and holds
// its lock for the duration, so per-session state is never touched
// concurrently.
type Handler struct {
	sessions  *session.Manager
	log       zerolog.Logger
	maxUpload int64
}

func NewHandler(sessions *session.Manager, log zerolog.Logger, maxUpload int64) *Handler {
	return &Handler{sessions: sessions, log: log, maxUpload: maxUpload}
}

// Router wires every endpoint onto a ServeMux.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /api/upload", h.Upload)
	mux.HandleFunc("POST /api/chat", h.Chat)
	mux.HandleFunc("POST /api/set-income", h.SetIncome)
	mux.HandleFunc("POST /api/set-goals", h.SetGoals)
	mux.HandleFunc("POST /api/add-transaction", h.AddTransaction)
	mux.HandleFunc("GET /api/summary", h.Summary)
	mux.HandleFunc("GET /api/initial-analysis", h.InitialAnalysis)

	var handler http.Handler = mux
	handler = Recovery(h.log)(handler)
	handler = Logger(h.log)(handler)
	return handler
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type uploadFileResult struct {
	Filename     string              `json:"filename"`
	Transactions int                 `json:"transactions"`
	Stats        *uploadStats        `json:"stats,omitempty"`
	Preview      []domain.Transaction `json:"preview,omitempty"`
	Error        string              `json:"error,omitempty"`
}

type uploadStats struct {
	DateFrom    string  `json:"date_from"`
	DateTo      string  `json:"date_to"`
	TotalAmount float64 `json:"total_amount"`
}

// Upload ingests one or more statement files into the session ledger.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		WriteError(w, http.StatusBadRequest, "No file provided")
		return
	}

	files := make([]ingest.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Cannot read %s", fh.Filename))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Cannot read %s", fh.Filename))
			return
		}
		files = append(files, ingest.File{Name: fh.Filename, Data: data})
	}

	results := ingest.LoadFiles(r.Context(), files, true)

	sess := h.sessions.GetOrCreate(r.FormValue("session_id"))
	sess.Lock()
	defer sess.Unlock()

	out := make([]uploadFileResult, 0, len(results))
	ok := 0
	for _, res := range results {
		fr := uploadFileResult{Filename: res.Name}
		if res.Err != nil {
			fr.Error = res.Err.Error()
			h.log.Warn().Str("filename", res.Name).Err(res.Err).Msg("file ingestion failed")
		} else {
			appended := sess.Ledger.Ingest(r.Context(), res.Transactions)
			sess.RecordFile(res.Name, len(appended))
			fr.Transactions = len(appended)
			fr.Stats = statsFor(appended)
			if len(appended) > 5 {
				fr.Preview = appended[:5]
			} else {
				fr.Preview = appended
			}
			ok++
		}
		out = append(out, fr)
	}

	if ok == 0 {
		WriteJSON(w, http.StatusBadRequest, map[string]any{
			"error": "No files could be processed",
			"files": out,
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"files":      out,
		"summary":    sess.Ledger.Summary(),
	})
}

func statsFor(txs []domain.Transaction) *uploadStats {
	if len(txs) == 0 {
		return nil
	}
	min, max := txs[0].Date, txs[0].Date
	total := 0.0
	for _, tx := range txs {
		if tx.Date.Before(min) {
			min = tx.Date
		}
		if tx.Date.After(max) {
			max = tx.Date
		}
		total += tx.Amount
	}
	return &uploadStats{
		DateFrom:    min.Format(time.DateOnly),
		DateTo:      max.Format(time.DateOnly),
		TotalAmount: total,
	}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		WriteError(w, http.StatusBadRequest, "Message is required")
		return
	}

	sess := h.sessions.Get(req.SessionID)
	if sess == nil {
		WriteError(w, http.StatusBadRequest, "No data uploaded yet. Upload a statement first.")
		return
	}
	sess.Lock()
	defer sess.Unlock()

	if sess.Advisor == nil {
		WriteError(w, http.StatusServiceUnavailable, "Advisor is not configured")
		return
	}

	reply, err := sess.Advisor.Chat(r.Context(), req.Message)
	if err != nil {
		h.log.Error().Err(err).Msg("chat failed")
		WriteError(w, http.StatusBadGateway, "Advisor request failed")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"response": reply})
}

type setIncomeRequest struct {
	Income    float64 `json:"income"`
	SessionID string  `json:"session_id"`
}

func (h *Handler) SetIncome(w http.ResponseWriter, r *http.Request) {
	var req setIncomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Income < 0 {
		WriteError(w, http.StatusBadRequest, "Income must not be negative")
		return
	}

	sess := h.sessions.GetOrCreate(req.SessionID)
	sess.Lock()
	defer sess.Unlock()

	sess.Ledger.SetIncome(req.Income)
	WriteJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"message":    fmt.Sprintf("Monthly income set to $%.2f", req.Income),
		"summary":    sess.Ledger.Summary(),
	})
}

type setGoalsRequest struct {
	Expenses  float64 `json:"expenses"`
	Wants     float64 `json:"wants"`
	Savings   float64 `json:"savings"`
	SessionID string  `json:"session_id"`
}

func (h *Handler) SetGoals(w http.ResponseWriter, r *http.Request) {
	var req setGoalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess := h.sessions.GetOrCreate(req.SessionID)
	sess.Lock()
	defer sess.Unlock()

	goals, err := sess.Ledger.SetGoals(req.Expenses, req.Wants, req.Savings)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"goals":      goals,
		"summary":    sess.Ledger.Summary(),
	})
}

type addTransactionRequest struct {
	Amount       float64 `json:"amount"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	CategoryType string  `json:"category_type"`
	SessionID    string  `json:"session_id"`
}

func (h *Handler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	var req addTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Description == "" {
		WriteError(w, http.StatusBadRequest, "Description is required")
		return
	}
	if req.Amount == 0 {
		WriteError(w, http.StatusBadRequest, "Amount must not be zero")
		return
	}

	sess := h.sessions.GetOrCreate(req.SessionID)
	sess.Lock()
	defer sess.Unlock()

	tx, sum := sess.Ledger.AddTransaction(r.Context(), req.Amount, req.Description, req.Category, domain.CategoryType(req.CategoryType))

	resp := map[string]any{
		"session_id":  sess.ID,
		"transaction": tx,
		"summary":     sum,
	}
	if sess.Advisor != nil {
		if note, err := sess.Advisor.TransactionUpdate(r.Context(), tx, sum); err == nil {
			resp["response"] = note
		} else {
			h.log.Warn().Err(err).Msg("transaction commentary failed")
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(r.URL.Query().Get("session_id"))
	if sess == nil {
		WriteError(w, http.StatusBadRequest, "Unknown session")
		return
	}
	sess.Lock()
	defer sess.Unlock()

	WriteJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"summary":    sess.Ledger.Summary(),
		"files":      sess.Files,
	})
}

func (h *Handler) InitialAnalysis(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(r.URL.Query().Get("session_id"))
	if sess == nil {
		WriteError(w, http.StatusBadRequest, "No data uploaded yet. Upload a statement first.")
		return
	}
	sess.Lock()
	defer sess.Unlock()

	if sess.Advisor == nil {
		WriteError(w, http.StatusServiceUnavailable, "Advisor is not configured")
		return
	}
	analysis, err := sess.Advisor.InitialAnalysis(r.Context(), sess.Ledger.Summary(), sess.Ledger.Goals(), sess.Ledger.EarnedIncome())
	if err != nil {
		h.log.Error().Err(err).Msg("initial analysis failed")
		WriteError(w, http.StatusBadGateway, "Advisor request failed")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"analysis": analysis})
}
