// Package wsserver exposes a workbook over HTTP, pushing recalculation
// results to connected clients over a WebSocket: a mutex-guarded
// map[*websocket.Conn]bool client set broadcasting a {"type": "..."}
// JSON message envelope.
package wsserver

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/arlowgrid/cellwise/internal/workbook"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server serves a single in-memory workbook over HTTP and WebSocket.
type Server struct {
	mu        sync.Mutex
	book      *workbook.Book
	processor *workbook.Processor
	precision int
	clients   map[*websocket.Conn]bool
	logger    *log.Logger
}

// New creates a Server around book, recalculating at the given decimal
// precision.
func New(book *workbook.Book, precision int, logger *log.Logger) *Server {
	return &Server{
		book:      book,
		processor: workbook.NewProcessor(precision),
		precision: precision,
		clients:   make(map[*websocket.Conn]bool),
		logger:    logger,
	}
}

// Handler returns the http.Handler exposing /cells and /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/cells", s.handleCells)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

type setCellRequest struct {
	Sheet string `json:"sheet"`
	Cell  string `json:"cell"`
	Input string `json:"input"`
}

type cellResult struct {
	Sheet string `json:"sheet"`
	Cell  string `json:"cell"`
	Value string `json:"value"`
}

type recalcMessage struct {
	Type  string       `json:"type"`
	Cells []cellResult `json:"cells"`
}

func (s *Server) handleCells(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req setCellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.book.Sheet(req.Sheet).Cell(req.Cell).RawInput = req.Input
	if err := s.processor.Process(s.book); err != nil {
		s.mu.Unlock()
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	results := s.snapshot()
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(recalcMessage{Type: "recalc", Cells: results}); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
	s.broadcast(results)
}

// snapshot renders every populated cell's current display value. Callers
// must hold s.mu.
func (s *Server) snapshot() []cellResult {
	var out []cellResult
	for _, name := range s.book.SheetNames() {
		sheet, _ := s.book.LookupSheet(name)
		for _, id := range sheet.CellIDs() {
			cell := sheet.Cells[id]
			out = append(out, cellResult{
				Sheet: name,
				Cell:  id,
				Value: displayValue(cell, s.precision),
			})
		}
	}
	return out
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("websocket upgrade: %v", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) broadcast(results []cellResult) {
	msg := recalcMessage{Type: "recalc", Cells: results}
	raw, err := json.Marshal(msg)
	if err != nil {
		s.logger.Printf("marshal broadcast: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			s.logger.Printf("broadcast to client: %v", err)
			conn.Close()
			delete(s.clients, conn)
		}
	}
}
