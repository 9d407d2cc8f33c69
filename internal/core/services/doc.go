// Package services contains the core business logic for PrescribeWise.
//
// Services implement the driving ports and depend only on driven ports,
// keeping infrastructure (PDF parsing, embedding APIs, vector storage)
// behind interfaces. The pipeline is: Ingestor builds the chunk corpus and
// vector index, Retriever answers similarity queries against it, and
// Answerer turns retrieved passages into a cited answer.
package services
