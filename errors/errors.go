package errors

import (
	"errors"
	"fmt"
)

// AMQPError represents a general AMQP error
type AMQPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Method  string `json:"method,omitempty"`
	Cause   error  `json:"cause,omitempty"`
}

func (e *AMQPError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("AMQP Error %d in %s: %s", e.Code, e.Method, e.Message)
	}
	return fmt.Sprintf("AMQP Error %d: %s", e.Code, e.Message)
}

func (e *AMQPError) Unwrap() error {
	return e.Cause
}

func (e *AMQPError) As(target interface{}) bool {
	if amqpErr, ok := target.(**AMQPError); ok {
		*amqpErr = e
		return true
	}
	return false
}

// AMQP Error Codes (from AMQP 0.9.1 specification)
const (
	// Connection errors
	ConnectionForced   = 320
	InvalidPath        = 402
	AccessRefused      = 403
	NotFound           = 404
	ResourceLocked     = 405
	PreconditionFailed = 406

	// Frame errors
	FrameError       = 501
	SyntaxError      = 502
	CommandInvalid   = 503
	ChannelErrorCode = 504
	UnexpectedFrame  = 505
	ResourceError    = 506
	NotAllowed       = 530
	NotImplemented   = 540
	InternalError    = 541
)

// Field Errors

// FieldReason identifies which field codec rule was violated
type FieldReason string

const (
	ReasonShortStringTooLong   FieldReason = "short-string-too-long"
	ReasonUnsupportedFieldType FieldReason = "unsupported-field-type"
	ReasonInvalidFieldType     FieldReason = "invalid-field-type"
	ReasonTruncatedField       FieldReason = "truncated-field"
)

// FieldError represents a field/table codec error
type FieldError struct {
	AMQPError
	Reason FieldReason `json:"reason"`
	Tag    byte        `json:"tag,omitempty"`
	GoType string      `json:"go_type,omitempty"`
}

func NewFieldError(code int, message string, reason FieldReason) *FieldError {
	return &FieldError{
		AMQPError: AMQPError{
			Code:    code,
			Message: message,
		},
		Reason: reason,
	}
}

func NewShortStringTooLong(length int) *FieldError {
	message := fmt.Sprintf("Short string too long: %d bytes (max: 255)", length)
	return NewFieldError(SyntaxError, message, ReasonShortStringTooLong)
}

func NewUnsupportedFieldType(value interface{}) *FieldError {
	err := NewFieldError(NotImplemented, fmt.Sprintf("Unsupported field type %T (%v)", value, value), ReasonUnsupportedFieldType)
	err.GoType = fmt.Sprintf("%T", value)
	return err
}

func NewInvalidFieldType(tag byte) *FieldError {
	err := NewFieldError(SyntaxError, fmt.Sprintf("Invalid field type tag 0x%02X", tag), ReasonInvalidFieldType)
	err.Tag = tag
	return err
}

func NewTruncatedField(what string) *FieldError {
	return NewFieldError(SyntaxError, fmt.Sprintf("Truncated field: %s extends beyond data", what), ReasonTruncatedField)
}

func (e *FieldError) As(target interface{}) bool {
	if amqpErr, ok := target.(**AMQPError); ok {
		*amqpErr = &e.AMQPError
		return true
	}
	return false
}

// Dispatch Errors

// DispatchError represents a frame routed to a key with no registered method type
type DispatchError struct {
	AMQPError
	Key   string      `json:"key"`
	Event interface{} `json:"-"`
}

func NewUnexpectedFrame(key string, event interface{}) *DispatchError {
	return &DispatchError{
		AMQPError: AMQPError{
			Code:    UnexpectedFrame,
			Message: fmt.Sprintf("Unexpected frame: no handler type registered for %s", key),
		},
		Key:   key,
		Event: event,
	}
}

func (e *DispatchError) As(target interface{}) bool {
	if amqpErr, ok := target.(**AMQPError); ok {
		*amqpErr = &e.AMQPError
		return true
	}
	return false
}

// Wait Errors

// WaitCanceledError is raised inside a suspended wait when the waiter is canceled
type WaitCanceledError struct {
	AMQPError
	Waiter string `json:"waiter"`
}

func NewWaitCanceled(waiter string) *WaitCanceledError {
	return &WaitCanceledError{
		AMQPError: AMQPError{
			Code:    InternalError,
			Message: fmt.Sprintf("Waiter %s has been canceled while waiting", waiter),
		},
		Waiter: waiter,
	}
}

func (e *WaitCanceledError) As(target interface{}) bool {
	if amqpErr, ok := target.(**AMQPError); ok {
		*amqpErr = &e.AMQPError
		return true
	}
	return false
}

// Connection Errors

// ConnectionError represents connection-specific errors
type ConnectionError struct {
	AMQPError
	ConnectionID string `json:"connection_id,omitempty"`
}

func NewConnectionError(code int, message, connectionID string) *ConnectionError {
	return &ConnectionError{
		AMQPError: AMQPError{
			Code:    code,
			Message: message,
		},
		ConnectionID: connectionID,
	}
}

func NewConnectionForced(connectionID, reason string) *ConnectionError {
	return NewConnectionError(ConnectionForced, fmt.Sprintf("Connection forced closed: %s", reason), connectionID)
}

func (e *ConnectionError) As(target interface{}) bool {
	if amqpErr, ok := target.(**AMQPError); ok {
		*amqpErr = &e.AMQPError
		return true
	}
	return false
}

// Channel Errors

// ChannelError represents channel-specific errors
type ChannelError struct {
	AMQPError
	ConnectionID string `json:"connection_id,omitempty"`
	ChannelID    uint16 `json:"channel_id"`
}

func NewChannelError(code int, message, connectionID string, channelID uint16) *ChannelError {
	return &ChannelError{
		AMQPError: AMQPError{
			Code:    code,
			Message: message,
		},
		ConnectionID: connectionID,
		ChannelID:    channelID,
	}
}

func NewChannelNotFound(connectionID string, channelID uint16) *ChannelError {
	return NewChannelError(NotFound, fmt.Sprintf("Channel %d not found", channelID), connectionID, channelID)
}

// Protocol Errors

// ProtocolError represents protocol-specific errors
type ProtocolError struct {
	AMQPError
	FrameType byte   `json:"frame_type,omitempty"`
	ClassID   uint16 `json:"class_id,omitempty"`
	MethodID  uint16 `json:"method_id,omitempty"`
}

func NewProtocolError(code int, message string, frameType byte, classID, methodID uint16) *ProtocolError {
	return &ProtocolError{
		AMQPError: AMQPError{
			Code:    code,
			Message: message,
		},
		FrameType: frameType,
		ClassID:   classID,
		MethodID:  methodID,
	}
}

func NewFrameError(message string, frameType byte) *ProtocolError {
	return NewProtocolError(FrameError, fmt.Sprintf("Frame error: %s", message), frameType, 0, 0)
}

func NewSyntaxError(message string) *ProtocolError {
	return NewProtocolError(SyntaxError, fmt.Sprintf("Syntax error: %s", message), 0, 0, 0)
}

// Configuration Errors

// ConfigError represents configuration-specific errors
type ConfigError struct {
	AMQPError
	Section string `json:"section"`
	Key     string `json:"key,omitempty"`
}

func NewConfigError(message, section, key string, cause error) *ConfigError {
	return &ConfigError{
		AMQPError: AMQPError{
			Code:    InternalError,
			Message: message,
			Cause:   cause,
		},
		Section: section,
		Key:     key,
	}
}

func NewConfigValidationError(section, key, reason string) *ConfigError {
	message := fmt.Sprintf("Configuration validation failed for %s.%s: %s", section, key, reason)
	return NewConfigError(message, section, key, nil)
}

// Helper functions for common error checking

// IsWaitCanceled checks if an error is a WaitCanceledError
func IsWaitCanceled(err error) bool {
	var waitErr *WaitCanceledError
	return errors.As(err, &waitErr)
}

// IsUnexpectedFrame checks if an error is a DispatchError
func IsUnexpectedFrame(err error) bool {
	var dispErr *DispatchError
	return errors.As(err, &dispErr)
}

// IsFieldError checks if an error is a FieldError with the given reason
func IsFieldError(err error, reason FieldReason) bool {
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		return fieldErr.Reason == reason
	}
	return false
}

// IsShortStringTooLong checks if an error indicates a short string over 255 bytes
func IsShortStringTooLong(err error) bool {
	return IsFieldError(err, ReasonShortStringTooLong)
}

// IsUnsupportedFieldType checks if an error indicates a value with no wire representation
func IsUnsupportedFieldType(err error) bool {
	return IsFieldError(err, ReasonUnsupportedFieldType)
}

// IsInvalidFieldType checks if an error indicates an unrecognized field type tag
func IsInvalidFieldType(err error) bool {
	return IsFieldError(err, ReasonInvalidFieldType)
}

// IsConnectionError checks if an error is a ConnectionError
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// IsChannelError checks if an error is a ChannelError
func IsChannelError(err error) bool {
	var chanErr *ChannelError
	return errors.As(err, &chanErr)
}

// GetErrorCode returns the AMQP error code if the error is an AMQPError
func GetErrorCode(err error) int {
	var amqpErr *AMQPError
	if errors.As(err, &amqpErr) {
		return amqpErr.Code
	}
	return 0
}
