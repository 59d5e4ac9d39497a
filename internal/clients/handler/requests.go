package handler

import (
	"clientview/internal/clients/models"
	"clientview/internal/document"
	dErrors "clientview/pkg/domain-errors"
)

// parseCreate accepts the legacy {party, address} shape and the bundled
// {client, addresses: [{address}]} shape. The presence of "client" selects
// the bundled shape.
func parseCreate(body map[string]any, requireAddress bool) (models.CreateClientCommand, error) {
	if _, bundled := body["client"]; bundled || requireAddress {
		return parseBundled(body, requireAddress)
	}
	cmd := models.CreateClientCommand{
		Client: asDocument(body["party"]),
		Legacy: true,
	}
	if addr := asDocument(body["address"]); addr != nil {
		cmd.Addresses = []document.Document{addr}
	}
	return cmd, nil
}

// parseBundled reads only the first addresses entry. A null or non-object
// first entry counts as an empty address; later entries are never consulted.
func parseBundled(body map[string]any, requireAddress bool) (models.CreateClientCommand, error) {
	cmd := models.CreateClientCommand{Client: asDocument(body["client"])}
	items, _ := body["addresses"].([]any)

	var first document.Document
	if len(items) > 0 {
		first = asDocument(items[0])
		if nested, ok := first["address"]; ok {
			first = asDocument(nested)
		}
	}
	if requireAddress && (cmd.Client == nil || first == nil) {
		return models.CreateClientCommand{}, dErrors.New(dErrors.CodeValidation, "Expected { client, addresses[0].address }")
	}
	if len(items) > 0 {
		if first == nil {
			first = document.Document{}
		}
		cmd.Addresses = []document.Document{first}
	}
	return cmd, nil
}

func asDocument(v any) document.Document {
	switch m := v.(type) {
	case map[string]any:
		return document.Document(m)
	case document.Document:
		return m
	default:
		return nil
	}
}
