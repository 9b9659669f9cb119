package wsprcodex

/*------------------------------------------------------------------
 *
 * Purpose:	Codec over HTTP, for applications that would rather not
 *		link Go code.
 *
 * Description:	POST /encode	{"hex":"48656c6c6f"} or {"text":"Hello"},
 *				optional "message_id".
 *				-> {"message_id":7,"mode":"basic",
 *				    "messages":["K1ABCD FN31 23", ...]}
 *
 *		POST /decode	{"messages":[...]}, optional "mode".
 *				-> {"hex":"...","text":"..."}
 *
 *		GET /capacity	single message and payload limits.
 *
 *		GET /metrics	Prometheus.
 *
 *		Errors are {"error":..., "kind":...} with 400, plus
 *		"missing" and "duplicate" for incomplete sequences.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
	"unicode/utf8"
)

// Requests are small (768 bytes of payload at most) so anything big is junk.
const maxRequestBytes = 64 * 1024

type Server struct {
	codec   *MultiMessageCodec
	metrics *Metrics
	mux     *http.ServeMux
}

func NewServer(codec *MultiMessageCodec, metrics *Metrics) *Server {
	var s = &Server{codec: codec, metrics: metrics, mux: http.NewServeMux()}

	s.mux.HandleFunc("POST /encode", s.handleEncode)
	s.mux.HandleFunc("POST /decode", s.handleDecode)
	s.mux.HandleFunc("GET /capacity", s.handleCapacity)
	s.mux.Handle("GET /metrics", metrics.Handler())

	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

type encodeRequest struct {
	Hex       string `json:"hex,omitempty"`
	Text      string `json:"text,omitempty"`
	MessageID *int   `json:"message_id,omitempty"`
}

type encodeResponse struct {
	MessageID byte     `json:"message_id"`
	Mode      string   `json:"mode"`
	Messages  []string `json:"messages"`
}

type decodeRequest struct {
	Messages []string `json:"messages"`
	Mode     string   `json:"mode,omitempty"`
}

type decodeResponse struct {
	Hex  string `json:"hex"`
	Text string `json:"text,omitempty"`
}

type capacityResponse struct {
	Capacity        string `json:"capacity"`
	MaxPayloadBytes int    `json:"max_payload_bytes"`
	MaxDataBytes    int    `json:"max_data_bytes"`
	FrameBytes      int    `json:"frame_bytes"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Missing   []int  `json:"missing,omitempty"`
	Duplicate []int  `json:"duplicate,omitempty"`
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	var req encodeRequest

	var err = decodeJSONBody(w, r, &req)
	if err != nil {
		s.fail(w, "encode", err)
		return
	}

	var data = []byte(req.Text)
	if req.Hex != "" {
		data, err = hex.DecodeString(req.Hex)
		if err != nil {
			s.fail(w, "encode", fmt.Errorf("%w: hex: %w", ErrFormatInvalid, err))
			return
		}
	}

	var id byte
	if req.MessageID != nil {
		if *req.MessageID < 0 || *req.MessageID > 255 {
			s.fail(w, "encode", fmt.Errorf("%w: message_id must be 0-255", ErrFormatInvalid))
			return
		}

		id = byte(*req.MessageID)
	} else if len(data) > 0 {
		id, err = s.codec.RandomMessageID()
		if err != nil {
			s.fail(w, "encode", err)
			return
		}
	}

	var messages, encErr = s.codec.EncodeWithID(data, id)
	if encErr != nil {
		s.fail(w, "encode", encErr)
		return
	}

	s.metrics.observe("encode", nil, len(data), len(messages))

	var resp = encodeResponse{MessageID: id, Mode: ModeFor(len(data)).String()}
	for _, m := range messages {
		resp.Messages = append(resp.Messages, m.String())
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req decodeRequest

	var err = decodeJSONBody(w, r, &req)
	if err != nil {
		s.fail(w, "decode", err)
		return
	}

	var messages = make([]Message, 0, len(req.Messages))
	for _, text := range req.Messages {
		var m, parseErr = ParseMessage(text)
		if parseErr != nil {
			s.fail(w, "decode", parseErr)
			return
		}

		messages = append(messages, m)
	}

	var data []byte
	if req.Mode == "" {
		data, err = s.codec.Decode(messages)
	} else {
		var mode, modeErr = ParseMode(req.Mode)
		if modeErr != nil {
			s.fail(w, "decode", modeErr)
			return
		}

		data, err = s.codec.DecodeWithMode(messages, mode)
	}

	if err != nil {
		s.fail(w, "decode", err)
		return
	}

	s.metrics.observe("decode", nil, len(data), len(messages))

	var resp = decodeResponse{Hex: hex.EncodeToString(data)}
	if utf8.Valid(data) {
		resp.Text = string(data)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCapacity(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, capacityResponse{
		Capacity:        WSPRCapacity().String(),
		MaxPayloadBytes: s.codec.MaxPayloadBytes(),
		MaxDataBytes:    s.codec.MaxDataBytes(),
		FrameBytes:      FrameSize,
	})
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	s.metrics.observe(op, err, 0, 0)

	logger.Info("request failed", "op", op, "err", err)

	var resp = errorResponse{Error: err.Error(), Kind: ErrorKind(err)} //nolint:exhaustruct

	var seqErr *SequenceError
	if errors.As(err, &seqErr) {
		resp.Missing = seqErr.Missing
		resp.Duplicate = seqErr.Duplicate
	}

	writeJSON(w, http.StatusBadRequest, resp)
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) error {
	var dec = json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()

	var err = dec.Decode(v)
	if err != nil {
		return fmt.Errorf("%w: request body: %w", ErrFormatInvalid, err)
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	var err = json.NewEncoder(w).Encode(v)
	if err != nil {
		logger.Warn("writing response", "err", err)
	}
}

// ListenAndServe runs until ctx is cancelled.  ready, if not nil, gets the bound
// address once listening.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	var ln, err = net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	var srv = &http.Server{ //nolint:exhaustruct
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if ready != nil {
		ready(ln.Addr())
	}

	logger.Info("listening", "addr", ln.Addr())

	var errs = make(chan error, 1)
	go func() {
		errs <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		var shutdownCtx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx) //nolint:contextcheck
	case err = <-errs:
		return err
	}
}
