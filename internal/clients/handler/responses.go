package handler

import (
	"clientview/internal/clients/join"
	"clientview/internal/clients/models"
	"clientview/internal/document"
)

type createResponse struct {
	Message string           `json:"message"`
	Data    *join.ClientView `json:"data"`
}

type deleteScope struct {
	PartyID   string `json:"ptyId"`
	AddressID string `json:"addressId,omitempty"`
}

type deleteAddressResponse struct {
	Message      string      `json:"message"`
	DeletedCount int64       `json:"deletedCount"`
	Scope        deleteScope `json:"scope"`
}

type deleteClientResponse struct {
	Message             string      `json:"message"`
	DeletedPartyCount   int64       `json:"deletedPartyCount"`
	DeletedAddressCount int64       `json:"deletedAddressCount"`
	Scope               deleteScope `json:"scope"`
}

type seedResponse struct {
	Message     string                       `json:"message"`
	Collections map[string]models.SeedCounts `json:"collections"`
}

type debugResponse struct {
	Parties        []document.Document `json:"parties"`
	Addresses      []document.Document `json:"addresses"`
	PartiesCount   int                 `json:"partiesCount"`
	AddressesCount int                 `json:"addressesCount"`
}
