// Package decoder normalizes raw decoder JSON (acarsdec, dumpvdl2,
// dumphfdl and compatible feeds) into the shared message shape.
package decoder

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

// ErrNoDecoder is returned by Redecode when no text decoder hook is
// installed. Callers treat this as a recoverable failure and keep the
// previous structured payload.
var ErrNoDecoder = errors.New("no text decoder installed")

// RedecodeHook re-derives a decoded description and structured payload
// from message text, typically backed by an external decode library.
type RedecodeHook func(text string) (string, []core.LabelValue, error)

// Service turns raw datagrams into messages.
type Service struct {
	redecoder RedecodeHook
}

// New creates a decoder service. hook may be nil when no external text
// decoder is available.
func New(hook RedecodeHook) *Service {
	return &Service{redecoder: hook}
}

// Decode parses one datagram from the given link into a message. The
// dumpvdl2 and dumphfdl envelopes are unwrapped; everything else is
// treated as the flat acarsdec shape.
func (s *Service) Decode(link core.LinkType, raw []byte) (*core.Message, error) {
	var probe struct {
		VDL2 json.RawMessage `json:"vdl2"`
		HFDL json.RawMessage `json:"hfdl"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("parsing datagram: %w", err)
	}

	var (
		msg *core.Message
		err error
	)
	switch {
	case probe.VDL2 != nil:
		msg, err = decodeVDLM2(probe.VDL2)
	case probe.HFDL != nil:
		msg, err = decodeHFDL(probe.HFDL)
	default:
		msg, err = decodeFlat(raw)
	}
	if err != nil {
		return nil, err
	}

	msg.UID = uuid.NewString()
	msg.Link = link
	msg.Tail = strings.ReplaceAll(msg.Tail, ".", "")
	msg.LabelType = labelType(msg.Label)
	return msg, nil
}

// Redecode re-derives the structured payload from merged text via the
// installed hook.
func (s *Service) Redecode(text string) (string, []core.LabelValue, error) {
	if s.redecoder == nil {
		return "", nil, ErrNoDecoder
	}
	return s.redecoder(text)
}

// flatMessage is the acarsdec output shape, also produced by the
// Inmarsat and Iridium feeds.
type flatMessage struct {
	Timestamp float64         `json:"timestamp"`
	StationID string          `json:"station_id"`
	Freq      float64         `json:"freq"`
	Level     float64         `json:"level"`
	Error     int             `json:"error"`
	Mode      string          `json:"mode"`
	Label     string          `json:"label"`
	BlockID   string          `json:"block_id"`
	Ack       json.RawMessage `json:"ack"`
	Tail      string          `json:"tail"`
	Flight    string          `json:"flight"`
	Msgno     string          `json:"msgno"`
	Text      string          `json:"text"`
	Data      string          `json:"data"`
	ICAO      int             `json:"icao"`
	ToAddr    int             `json:"toaddr"`
	FromAddr  int             `json:"fromaddr"`
	Depa      string          `json:"depa"`
	Dsta      string          `json:"dsta"`
	Eta       string          `json:"eta"`
	Gtout     string          `json:"gtout"`
	Gtin      string          `json:"gtin"`
	Wloff     string          `json:"wloff"`
	Wlin      string          `json:"wlin"`
	Lat       *float64        `json:"lat"`
	Lon       *float64        `json:"lon"`
	Alt       *float64        `json:"alt"`
	Libacars  json.RawMessage `json:"libacars"`
}

func decodeFlat(raw []byte) (*core.Message, error) {
	var f flatMessage
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing flat message: %w", err)
	}

	msg := &core.Message{
		Timestamp: f.Timestamp,
		StationID: f.StationID,
		Freq:      f.Freq,
		Level:     f.Level,
		Error:     f.Error,
		Mode:      f.Mode,
		Label:     f.Label,
		BlockID:   f.BlockID,
		Ack:       ackString(f.Ack),
		Tail:      f.Tail,
		Flight:    f.Flight,
		Msgno:     f.Msgno,
		Text:      f.Text,
		Data:      f.Data,
		ToAddr:    f.ToAddr,
		FromAddr:  f.FromAddr,
		Depa:      f.Depa,
		Dsta:      f.Dsta,
		Eta:       f.Eta,
		Gtout:     f.Gtout,
		Gtin:      f.Gtin,
		Wloff:     f.Wloff,
		Wlin:      f.Wlin,
		Latitude:  f.Lat,
		Longitude: f.Lon,
		Altitude:  f.Alt,
		Libacars:  labelValues(f.Libacars),
	}
	if f.ICAO != 0 {
		msg.ICAOHex = fmt.Sprintf("%X", f.ICAO)
	}
	return msg, nil
}

// vdlm2Envelope is the dumpvdl2 output shape.
type vdlm2Envelope struct {
	T struct {
		Sec  float64 `json:"sec"`
		Usec float64 `json:"usec"`
	} `json:"t"`
	Station      string   `json:"station"`
	Freq         int64    `json:"freq"`
	SigLevel     *float64 `json:"sig_level"`
	HdrBitsFixed int      `json:"hdr_bits_fixed"`
	AVLC         struct {
		CR  string `json:"cr"`
		Src struct {
			Addr   string `json:"addr"`
			Type   string `json:"type"`
			Status string `json:"status"`
		} `json:"src"`
		Dst struct {
			Addr string `json:"addr"`
		} `json:"dst"`
		ACARS *struct {
			Reg       string          `json:"reg"`
			Flight    string          `json:"flight"`
			Mode      string          `json:"mode"`
			Label     string          `json:"label"`
			BlkID     string          `json:"blk_id"`
			Ack       json.RawMessage `json:"ack"`
			MsgNum    string          `json:"msg_num"`
			MsgNumSeq string          `json:"msg_num_seq"`
			MsgText   string          `json:"msg_text"`
			Arinc622  json.RawMessage `json:"arinc622"`
		} `json:"acars"`
		XID *struct {
			VDLParams []struct {
				Name  string          `json:"name"`
				Value json.RawMessage `json:"value"`
			} `json:"vdl_params"`
		} `json:"xid"`
	} `json:"avlc"`
}

func decodeVDLM2(raw []byte) (*core.Message, error) {
	var env vdlm2Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("parsing vdl2 envelope: %w", err)
	}

	msg := &core.Message{
		Timestamp: env.T.Sec + env.T.Usec/1e6,
		StationID: env.Station,
		Error:     env.HdrBitsFixed,
	}
	if env.Freq != 0 {
		msg.Freq = truncate(float64(env.Freq)/1e6, 6)
	}
	if env.SigLevel != nil {
		msg.Level = truncate(*env.SigLevel, 1)
	}
	if env.AVLC.Dst.Addr != "" {
		fmt.Sscanf(env.AVLC.Dst.Addr, "%x", &msg.ToAddr)
	}
	if env.AVLC.Src.Addr != "" {
		fmt.Sscanf(env.AVLC.Src.Addr, "%x", &msg.FromAddr)
	}
	if env.AVLC.CR == "Response" {
		msg.IsResponse = true
	}
	if env.AVLC.Src.Type == "Aircraft" {
		msg.ICAOHex = strings.ToUpper(env.AVLC.Src.Addr)
		msg.IsOnground = env.AVLC.Src.Status != "Airborne"
	}

	if a := env.AVLC.ACARS; a != nil {
		msg.Tail = a.Reg
		msg.Flight = a.Flight
		msg.Mode = a.Mode
		msg.Label = a.Label
		msg.BlockID = a.BlkID
		msg.Ack = ackString(a.Ack)
		msg.Text = a.MsgText
		msg.Msgno = a.MsgNum + a.MsgNumSeq
		msg.Libacars = labelValues(a.Arinc622)
	}

	if env.AVLC.XID != nil {
		for _, p := range env.AVLC.XID.VDLParams {
			switch p.Name {
			case "dst_airport":
				var dsta string
				if json.Unmarshal(p.Value, &dsta) == nil {
					msg.Dsta = dsta
				}
			case "ac_location":
				var loc struct {
					Loc struct {
						Lat *float64 `json:"lat"`
						Lon *float64 `json:"lon"`
					} `json:"loc"`
					Alt *float64 `json:"alt"`
				}
				if json.Unmarshal(p.Value, &loc) == nil {
					msg.Latitude = loc.Loc.Lat
					msg.Longitude = loc.Loc.Lon
					msg.Altitude = loc.Alt
				}
			}
		}
	}

	return msg, nil
}

// hfdlEnvelope is the dumphfdl output shape.
type hfdlEnvelope struct {
	T struct {
		Sec  float64 `json:"sec"`
		Usec float64 `json:"usec"`
	} `json:"t"`
	Station  string   `json:"station"`
	Freq     int64    `json:"freq"`
	SigLevel *float64 `json:"sig_level"`
	LPDU     *struct {
		HFNPDU *struct {
			ACARS *struct {
				Reg       string          `json:"reg"`
				Mode      string          `json:"mode"`
				Label     string          `json:"label"`
				BlkID     string          `json:"blk_id"`
				Ack       json.RawMessage `json:"ack"`
				MsgNum    string          `json:"msg_num"`
				MsgNumSeq string          `json:"msg_num_seq"`
				MsgText   string          `json:"msg_text"`
				Arinc622  json.RawMessage `json:"arinc622"`
			} `json:"acars"`
		} `json:"hfnpdu"`
	} `json:"lpdu"`
}

func decodeHFDL(raw []byte) (*core.Message, error) {
	var env hfdlEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("parsing hfdl envelope: %w", err)
	}

	msg := &core.Message{
		Timestamp: env.T.Sec + env.T.Usec/1e6,
		StationID: env.Station,
		Error:     countHFDLErrors(raw),
	}
	if env.Freq != 0 {
		msg.Freq = truncate(float64(env.Freq)/1e6, 3)
	}
	if env.SigLevel != nil {
		msg.Level = truncate(*env.SigLevel, 1)
	}

	if env.LPDU != nil && env.LPDU.HFNPDU != nil && env.LPDU.HFNPDU.ACARS != nil {
		a := env.LPDU.HFNPDU.ACARS
		msg.Tail = a.Reg
		msg.Mode = a.Mode
		msg.Label = a.Label
		msg.BlockID = a.BlkID
		msg.Ack = ackString(a.Ack)
		msg.Text = a.MsgText
		msg.Msgno = a.MsgNum + a.MsgNumSeq
		msg.Libacars = labelValues(a.Arinc622)
	}

	return msg, nil
}

// countHFDLErrors walks the whole envelope and counts truthy err
// fields at any depth.
func countHFDLErrors(raw []byte) int {
	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return 0
	}
	return countErrs(tree)
}

func countErrs(node map[string]any) int {
	total := 0
	for key, value := range node {
		switch v := value.(type) {
		case map[string]any:
			total += countErrs(v)
		case bool:
			if key == "err" && v {
				total++
			}
		}
	}
	return total
}

// ackString tolerates the acarsdec convention of "ack": false for
// unacknowledged messages alongside string acknowledgements.
func ackString(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return ""
}

// labelValues flattens a structured payload object into ordered
// label/value pairs. Non-string values keep their JSON encoding.
func labelValues(raw json.RawMessage) []core.LabelValue {
	if raw == nil {
		return nil
	}

	// Some feeds double-encode the payload as a JSON string.
	var nested string
	if json.Unmarshal(raw, &nested) == nil {
		raw = json.RawMessage(nested)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || len(obj) == 0 {
		return nil
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]core.LabelValue, 0, len(keys))
	for _, k := range keys {
		var s string
		if json.Unmarshal(obj[k], &s) != nil {
			s = string(obj[k])
		}
		pairs = append(pairs, core.LabelValue{Label: k, Value: s})
	}
	return pairs
}

func truncate(v float64, decimals int) float64 {
	shift := math.Pow(10, float64(decimals))
	return math.Trunc(v*shift) / shift
}
