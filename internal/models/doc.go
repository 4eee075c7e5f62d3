// Package models lists the models a provider offers for the configured
// credential, so users can check which model ids their token can reach.
package models
