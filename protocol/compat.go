package protocol

import (
	amqp091 "github.com/rabbitmq/amqp091-go"
)

// Conversions between this codec's value model and the amqp091-go one, for
// applications migrating from the synchronous client. The two models differ
// in their decimal and nested container types; everything else passes
// through unchanged.

// TableToAMQP091 converts a decoded Table into an amqp091.Table
func TableToAMQP091(table Table) amqp091.Table {
	if table == nil {
		return nil
	}
	out := make(amqp091.Table, len(table))
	for key, value := range table {
		out[key] = valueToAMQP091(value)
	}
	return out
}

// TableFromAMQP091 converts an amqp091.Table into a Table ready for encoding
func TableFromAMQP091(table amqp091.Table) Table {
	if table == nil {
		return nil
	}
	out := make(Table, len(table))
	for key, value := range table {
		out[key] = valueFromAMQP091(value)
	}
	return out
}

func valueToAMQP091(value interface{}) interface{} {
	switch v := value.(type) {
	case Decimal:
		return amqp091.Decimal{Scale: v.Scale, Value: v.Value}
	case Table:
		return TableToAMQP091(v)
	case map[string]interface{}:
		return TableToAMQP091(Table(v))
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, element := range v {
			out[i] = valueToAMQP091(element)
		}
		return out
	default:
		return v
	}
}

func valueFromAMQP091(value interface{}) interface{} {
	switch v := value.(type) {
	case amqp091.Decimal:
		return Decimal{Scale: v.Scale, Value: v.Value}
	case amqp091.Table:
		return TableFromAMQP091(v)
	case map[string]interface{}:
		return TableFromAMQP091(amqp091.Table(v))
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, element := range v {
			out[i] = valueFromAMQP091(element)
		}
		return out
	default:
		return v
	}
}
