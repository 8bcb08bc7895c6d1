// Package schema defines the JSON wire format of macro graphs and macro documents.
//
// A graph document lists the declared inputs and the node arena:
//
//	{
//	  "inputs": [{"parameter": "obj", "parameterType": "int"}],
//	  "nodes": [
//	    {"type": "Start", "inputValues": [], "outFlow": 1},
//	    {"type": "SetPosition", "inputValues": [
//	      {"id": "objectIndex", "type": "int", "inputIndex": 0},
//	      {"id": "position", "type": "float3", "referencedNodeId": 2, "referencedValueId": "value"}
//	    ]},
//	    {"type": "Float3", "inputValues": [
//	      {"id": "x", "type": "float", "value": "0"},
//	      {"id": "y", "type": "float", "value": "1"},
//	      {"id": "z", "type": "float", "value": "0"}
//	    ]}
//	  ]
//	}
//
// ParseGraph decodes leniently so that documents produced by older editors still load.
// Validator checks documents strictly against the embedded JSON Schema.
package schema
