package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/maxpert/amqp-client-go/errors"
)

// Class IDs as defined in the AMQP 0.9.1 specification
const (
	ClassConnection uint16 = 10
	ClassChannel    uint16 = 20
	ClassExchange   uint16 = 40
	ClassQueue      uint16 = 50
	ClassBasic      uint16 = 60
	ClassConfirm    uint16 = 85
	ClassTx         uint16 = 90
)

// MethodKey identifies a protocol method type: the class ID in the high 16
// bits, the method ID in the low 16 bits. It is the default dispatch key for
// decoded method frames.
type MethodKey uint32

// NewMethodKey builds a MethodKey from a class and method ID pair
func NewMethodKey(classID, methodID uint16) MethodKey {
	return MethodKey(uint32(classID)<<16 | uint32(methodID))
}

// ClassID returns the class ID half of the key
func (k MethodKey) ClassID() uint16 {
	return uint16(k >> 16)
}

// MethodID returns the method ID half of the key
func (k MethodKey) MethodID() uint16 {
	return uint16(k & 0xFFFF)
}

// String returns the catalog name of the method, e.g. "connection.start",
// or a numeric form for keys outside the catalog.
func (k MethodKey) String() string {
	if info, ok := Methods[k]; ok {
		return info.Class + "." + info.Method
	}
	return fmt.Sprintf("class-%d.method-%d", k.ClassID(), k.MethodID())
}

// Method keys for the connection class
const (
	KeyConnectionStart     = MethodKey(uint32(ClassConnection)<<16 | 10)
	KeyConnectionStartOK   = MethodKey(uint32(ClassConnection)<<16 | 11)
	KeyConnectionSecure    = MethodKey(uint32(ClassConnection)<<16 | 20)
	KeyConnectionSecureOK  = MethodKey(uint32(ClassConnection)<<16 | 21)
	KeyConnectionTune      = MethodKey(uint32(ClassConnection)<<16 | 30)
	KeyConnectionTuneOK    = MethodKey(uint32(ClassConnection)<<16 | 31)
	KeyConnectionOpen      = MethodKey(uint32(ClassConnection)<<16 | 40)
	KeyConnectionOpenOK    = MethodKey(uint32(ClassConnection)<<16 | 41)
	KeyConnectionClose     = MethodKey(uint32(ClassConnection)<<16 | 50)
	KeyConnectionCloseOK   = MethodKey(uint32(ClassConnection)<<16 | 51)
	KeyConnectionBlocked   = MethodKey(uint32(ClassConnection)<<16 | 60)
	KeyConnectionUnblocked = MethodKey(uint32(ClassConnection)<<16 | 61)
)

// Method keys for the channel class
const (
	KeyChannelOpen    = MethodKey(uint32(ClassChannel)<<16 | 10)
	KeyChannelOpenOK  = MethodKey(uint32(ClassChannel)<<16 | 11)
	KeyChannelFlow    = MethodKey(uint32(ClassChannel)<<16 | 20)
	KeyChannelFlowOK  = MethodKey(uint32(ClassChannel)<<16 | 21)
	KeyChannelClose   = MethodKey(uint32(ClassChannel)<<16 | 40)
	KeyChannelCloseOK = MethodKey(uint32(ClassChannel)<<16 | 41)
)

// Method keys for the exchange class
const (
	KeyExchangeDeclare   = MethodKey(uint32(ClassExchange)<<16 | 10)
	KeyExchangeDeclareOK = MethodKey(uint32(ClassExchange)<<16 | 11)
	KeyExchangeDelete    = MethodKey(uint32(ClassExchange)<<16 | 20)
	KeyExchangeDeleteOK  = MethodKey(uint32(ClassExchange)<<16 | 21)
	KeyExchangeBind      = MethodKey(uint32(ClassExchange)<<16 | 30)
	KeyExchangeBindOK    = MethodKey(uint32(ClassExchange)<<16 | 31)
	KeyExchangeUnbind    = MethodKey(uint32(ClassExchange)<<16 | 40)
	KeyExchangeUnbindOK  = MethodKey(uint32(ClassExchange)<<16 | 51)
)

// Method keys for the queue class
const (
	KeyQueueDeclare   = MethodKey(uint32(ClassQueue)<<16 | 10)
	KeyQueueDeclareOK = MethodKey(uint32(ClassQueue)<<16 | 11)
	KeyQueueBind      = MethodKey(uint32(ClassQueue)<<16 | 20)
	KeyQueueBindOK    = MethodKey(uint32(ClassQueue)<<16 | 21)
	KeyQueuePurge     = MethodKey(uint32(ClassQueue)<<16 | 30)
	KeyQueuePurgeOK   = MethodKey(uint32(ClassQueue)<<16 | 31)
	KeyQueueDelete    = MethodKey(uint32(ClassQueue)<<16 | 40)
	KeyQueueDeleteOK  = MethodKey(uint32(ClassQueue)<<16 | 41)
	KeyQueueUnbind    = MethodKey(uint32(ClassQueue)<<16 | 50)
	KeyQueueUnbindOK  = MethodKey(uint32(ClassQueue)<<16 | 51)
)

// Method keys for the basic class
const (
	KeyBasicQos          = MethodKey(uint32(ClassBasic)<<16 | 10)
	KeyBasicQosOK        = MethodKey(uint32(ClassBasic)<<16 | 11)
	KeyBasicConsume      = MethodKey(uint32(ClassBasic)<<16 | 20)
	KeyBasicConsumeOK    = MethodKey(uint32(ClassBasic)<<16 | 21)
	KeyBasicCancel       = MethodKey(uint32(ClassBasic)<<16 | 30)
	KeyBasicCancelOK     = MethodKey(uint32(ClassBasic)<<16 | 31)
	KeyBasicPublish      = MethodKey(uint32(ClassBasic)<<16 | 40)
	KeyBasicReturn       = MethodKey(uint32(ClassBasic)<<16 | 50)
	KeyBasicDeliver      = MethodKey(uint32(ClassBasic)<<16 | 60)
	KeyBasicGet          = MethodKey(uint32(ClassBasic)<<16 | 70)
	KeyBasicGetOK        = MethodKey(uint32(ClassBasic)<<16 | 71)
	KeyBasicGetEmpty     = MethodKey(uint32(ClassBasic)<<16 | 72)
	KeyBasicAck          = MethodKey(uint32(ClassBasic)<<16 | 80)
	KeyBasicReject       = MethodKey(uint32(ClassBasic)<<16 | 90)
	KeyBasicRecoverAsync = MethodKey(uint32(ClassBasic)<<16 | 100)
	KeyBasicRecover      = MethodKey(uint32(ClassBasic)<<16 | 110)
	KeyBasicRecoverOK    = MethodKey(uint32(ClassBasic)<<16 | 111)
	KeyBasicNack         = MethodKey(uint32(ClassBasic)<<16 | 120)
)

// Method keys for the confirm class
const (
	KeyConfirmSelect   = MethodKey(uint32(ClassConfirm)<<16 | 10)
	KeyConfirmSelectOK = MethodKey(uint32(ClassConfirm)<<16 | 11)
)

// Method keys for the tx class
const (
	KeyTxSelect     = MethodKey(uint32(ClassTx)<<16 | 10)
	KeyTxSelectOK   = MethodKey(uint32(ClassTx)<<16 | 11)
	KeyTxCommit     = MethodKey(uint32(ClassTx)<<16 | 20)
	KeyTxCommitOK   = MethodKey(uint32(ClassTx)<<16 | 21)
	KeyTxRollback   = MethodKey(uint32(ClassTx)<<16 | 30)
	KeyTxRollbackOK = MethodKey(uint32(ClassTx)<<16 | 31)
)

// MethodInfo names a catalog entry: its declaring class name and its own name
type MethodInfo struct {
	Class  string
	Method string
}

// Methods is the protocol method type catalog: every declarable method type of
// AMQP 0.9.1, keyed by MethodKey. It is fixed at init and must be treated as
// read-only; the dispatch layer derives its handler naming from it.
var Methods = map[MethodKey]MethodInfo{
	KeyConnectionStart:     {"connection", "start"},
	KeyConnectionStartOK:   {"connection", "start_ok"},
	KeyConnectionSecure:    {"connection", "secure"},
	KeyConnectionSecureOK:  {"connection", "secure_ok"},
	KeyConnectionTune:      {"connection", "tune"},
	KeyConnectionTuneOK:    {"connection", "tune_ok"},
	KeyConnectionOpen:      {"connection", "open"},
	KeyConnectionOpenOK:    {"connection", "open_ok"},
	KeyConnectionClose:     {"connection", "close"},
	KeyConnectionCloseOK:   {"connection", "close_ok"},
	KeyConnectionBlocked:   {"connection", "blocked"},
	KeyConnectionUnblocked: {"connection", "unblocked"},

	KeyChannelOpen:    {"channel", "open"},
	KeyChannelOpenOK:  {"channel", "open_ok"},
	KeyChannelFlow:    {"channel", "flow"},
	KeyChannelFlowOK:  {"channel", "flow_ok"},
	KeyChannelClose:   {"channel", "close"},
	KeyChannelCloseOK: {"channel", "close_ok"},

	KeyExchangeDeclare:   {"exchange", "declare"},
	KeyExchangeDeclareOK: {"exchange", "declare_ok"},
	KeyExchangeDelete:    {"exchange", "delete"},
	KeyExchangeDeleteOK:  {"exchange", "delete_ok"},
	KeyExchangeBind:      {"exchange", "bind"},
	KeyExchangeBindOK:    {"exchange", "bind_ok"},
	KeyExchangeUnbind:    {"exchange", "unbind"},
	KeyExchangeUnbindOK:  {"exchange", "unbind_ok"},

	KeyQueueDeclare:   {"queue", "declare"},
	KeyQueueDeclareOK: {"queue", "declare_ok"},
	KeyQueueBind:      {"queue", "bind"},
	KeyQueueBindOK:    {"queue", "bind_ok"},
	KeyQueuePurge:     {"queue", "purge"},
	KeyQueuePurgeOK:   {"queue", "purge_ok"},
	KeyQueueDelete:    {"queue", "delete"},
	KeyQueueDeleteOK:  {"queue", "delete_ok"},
	KeyQueueUnbind:    {"queue", "unbind"},
	KeyQueueUnbindOK:  {"queue", "unbind_ok"},

	KeyBasicQos:          {"basic", "qos"},
	KeyBasicQosOK:        {"basic", "qos_ok"},
	KeyBasicConsume:      {"basic", "consume"},
	KeyBasicConsumeOK:    {"basic", "consume_ok"},
	KeyBasicCancel:       {"basic", "cancel"},
	KeyBasicCancelOK:     {"basic", "cancel_ok"},
	KeyBasicPublish:      {"basic", "publish"},
	KeyBasicReturn:       {"basic", "return"},
	KeyBasicDeliver:      {"basic", "deliver"},
	KeyBasicGet:          {"basic", "get"},
	KeyBasicGetOK:        {"basic", "get_ok"},
	KeyBasicGetEmpty:     {"basic", "get_empty"},
	KeyBasicAck:          {"basic", "ack"},
	KeyBasicReject:       {"basic", "reject"},
	KeyBasicRecoverAsync: {"basic", "recover_async"},
	KeyBasicRecover:      {"basic", "recover"},
	KeyBasicRecoverOK:    {"basic", "recover_ok"},
	KeyBasicNack:         {"basic", "nack"},

	KeyConfirmSelect:   {"confirm", "select"},
	KeyConfirmSelectOK: {"confirm", "select_ok"},

	KeyTxSelect:     {"tx", "select"},
	KeyTxSelectOK:   {"tx", "select_ok"},
	KeyTxCommit:     {"tx", "commit"},
	KeyTxCommitOK:   {"tx", "commit_ok"},
	KeyTxRollback:   {"tx", "rollback"},
	KeyTxRollbackOK: {"tx", "rollback_ok"},
}

// MethodFrame is a decoded method frame: the dispatchable event of this core.
// Payload carries the raw method arguments; decoding them is up to the
// handler, which knows the argument grammar for its method type.
type MethodFrame struct {
	Channel  uint16
	ClassID  uint16
	MethodID uint16
	Payload  []byte
}

// Key returns the method type key of the frame
func (f *MethodFrame) Key() MethodKey {
	return NewMethodKey(f.ClassID, f.MethodID)
}

// Name returns the catalog name of the frame's method type
func (f *MethodFrame) Name() string {
	return f.Key().String()
}

// ParseMethodFrame extracts the method type and argument payload from a raw
// method frame.
func ParseMethodFrame(frame *Frame) (*MethodFrame, error) {
	if frame.Type != FrameMethod {
		return nil, errors.NewFrameError("not a method frame", frame.Type)
	}
	if len(frame.Payload) < 4 {
		return nil, errors.NewFrameError("method frame payload too short", frame.Type)
	}
	return &MethodFrame{
		Channel:  frame.Channel,
		ClassID:  binary.BigEndian.Uint16(frame.Payload[0:2]),
		MethodID: binary.BigEndian.Uint16(frame.Payload[2:4]),
		Payload:  frame.Payload[4:],
	}, nil
}

// EncodeMethodFrame builds a method frame for the given channel from a method
// key and pre-encoded arguments.
func EncodeMethodFrame(channel uint16, key MethodKey, args []byte) *Frame {
	payload := make([]byte, 4+len(args))
	binary.BigEndian.PutUint16(payload[0:2], key.ClassID())
	binary.BigEndian.PutUint16(payload[2:4], key.MethodID())
	copy(payload[4:], args)

	return &Frame{
		Type:    FrameMethod,
		Channel: channel,
		Size:    uint32(len(payload)),
		Payload: payload,
	}
}
