// Package script runs Lua edit scripts against a session.
//
// Scripts see a global dbc table:
//
//	for _, m in ipairs(dbc.messages()) do
//	    if m.transmitter == "" then
//	        dbc.set_transmitter(m.original_id, "Gateway")
//	    end
//	end
//	dbc.rename(0x640, "VehicleSpeed")
//
// Message arguments are original identifiers, as reported by original_id.
// Every edit goes through the session and is undoable. A script that raises
// an error is rolled back to the state it started from.
//
// Only the base, table, string and math libraries are opened; dofile,
// loadfile and load are removed.
package script
