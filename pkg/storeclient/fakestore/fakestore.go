// Package fakestore is an in-process stand-in for the sharded store's load
// balancer. It speaks the init/write/read/status protocol and counts calls.
package fakestore

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"go.uber.org/atomic"

	"github.com/pg-sharding/shardbench/pkg/placement"
	"github.com/pg-sharding/shardbench/pkg/storeclient"
)

type FakeStore struct {
	Server *httptest.Server

	InitCalls   atomic.Int64
	WriteCalls  atomic.Int64
	ReadCalls   atomic.Int64
	StatusCalls atomic.Int64

	// InitStatus overrides the /init response code when non-zero.
	InitStatus atomic.Int64
	// NotReadyFor makes the first n /status calls answer 503.
	NotReadyFor atomic.Int64

	mu          sync.Mutex
	failWrites  map[int]bool
	failReads   map[int]bool
	lastInit    *placement.InitRequest
	initialized bool
	rows        map[int]storeclient.WriteRequest
}

func New() *FakeStore {
	fs := &FakeStore{
		failWrites: map[int]bool{},
		failReads:  map[int]bool{},
		rows:       map[int]storeclient.WriteRequest{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc(storeclient.InitPath, fs.initHandler)
	mux.HandleFunc(storeclient.WritePath, fs.writeHandler)
	mux.HandleFunc(storeclient.ReadPath, fs.readHandler)
	mux.HandleFunc("/status", fs.statusHandler)
	fs.Server = httptest.NewServer(mux)
	return fs
}

func (fs *FakeStore) URL() string {
	return fs.Server.URL
}

func (fs *FakeStore) Close() {
	fs.Server.Close()
}

func (fs *FakeStore) FailWrite(id int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.failWrites[id] = true
}

func (fs *FakeStore) FailRead(low int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.failReads[low] = true
}

func (fs *FakeStore) LastInit() *placement.InitRequest {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.lastInit
}

func (fs *FakeStore) Rows() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.rows)
}

func (fs *FakeStore) Row(id int) (storeclient.WriteRequest, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	row, ok := fs.rows[id]
	return row, ok
}

func (fs *FakeStore) initHandler(w http.ResponseWriter, r *http.Request) {
	fs.InitCalls.Inc()
	if r.Method != http.MethodPost {
		http.Error(w, "Method not supported", http.StatusMethodNotAllowed)
		return
	}
	var req placement.InitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Error decoding request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if code := int(fs.InitStatus.Load()); code != 0 && code != http.StatusOK {
		http.Error(w, "init rejected", code)
		return
	}

	fs.mu.Lock()
	fs.lastInit = &req
	fs.initialized = true
	fs.rows = map[int]storeclient.WriteRequest{}
	fs.mu.Unlock()

	reply(w, http.StatusOK, map[string]string{"message": "Configured Database", "status": "success"})
}

func (fs *FakeStore) writeHandler(w http.ResponseWriter, r *http.Request) {
	fs.WriteCalls.Inc()
	var req storeclient.WriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Error decoding request: "+err.Error(), http.StatusBadRequest)
		return
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.initialized {
		http.Error(w, "database is not configured", http.StatusBadRequest)
		return
	}
	if !fs.owned(req.StudID) {
		http.Error(w, "no shard for Stud_id", http.StatusBadRequest)
		return
	}
	if fs.failWrites[req.StudID] {
		http.Error(w, "write failed", http.StatusInternalServerError)
		return
	}
	fs.rows[req.StudID] = req
	reply(w, http.StatusOK, map[string]string{"message": "1 Data entries added", "status": "success"})
}

func (fs *FakeStore) readHandler(w http.ResponseWriter, r *http.Request) {
	fs.ReadCalls.Inc()
	var req storeclient.ReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Error decoding request: "+err.Error(), http.StatusBadRequest)
		return
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.failReads[req.StudID.Low] {
		http.Error(w, "read failed", http.StatusInternalServerError)
		return
	}
	data := []storeclient.WriteRequest{}
	for id := req.StudID.Low; id < req.StudID.High; id++ {
		if row, ok := fs.rows[id]; ok {
			data = append(data, row)
		}
	}
	reply(w, http.StatusOK, map[string]any{"data": data, "status": "success"})
}

func (fs *FakeStore) statusHandler(w http.ResponseWriter, r *http.Request) {
	fs.StatusCalls.Inc()
	if fs.NotReadyFor.Load() > 0 {
		fs.NotReadyFor.Dec()
		http.Error(w, "starting", http.StatusServiceUnavailable)
		return
	}
	reply(w, http.StatusOK, map[string]string{"status": "success"})
}

// owned reports whether some configured shard holds id. Caller holds mu.
func (fs *FakeStore) owned(id int) bool {
	for _, sh := range fs.lastInit.Shards {
		if sh.Contains(id) {
			return true
		}
	}
	return false
}

func reply(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
