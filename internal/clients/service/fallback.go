package service

import "clientview/internal/document"

// Sample data served by List while the store is disconnected. The address
// state references resolve against sampleStates.
func sampleParties() []document.Document {
	return []document.Document{
		{"PTY_ID": "1", "PTY_Name": "ABC Corp", "PTY_Email": "info@abc.com"},
		{"PTY_ID": "2", "PTY_Name": "XYZ Ltd", "PTY_Email": "contact@xyz.com"},
	}
}

func sampleAddresses() []document.Document {
	return []document.Document{
		{"Add_PartyID": "1", "Add_Street": "123 Main St", "Add_City": "New York", "Add_State": "1"},
		{"Add_PartyID": "2", "Add_Street": "456 Oak Ave", "Add_City": "Los Angeles", "Add_State": "2"},
	}
}

func sampleStates() []document.Document {
	return []document.Document{
		{"Stt_ID": "1", "Stt_Name": "New York"},
		{"Stt_ID": "2", "Stt_Name": "California"},
	}
}
