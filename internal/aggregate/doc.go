// Package aggregate fans calendar fetches out across accounts and merges
// the results into one chronologically ordered view.
//
// Each account is fetched by its own bounded worker; a failure for one
// account is captured and reported alongside the other accounts' results
// instead of aborting them. The merged order is determined solely by the
// final sort, never by arrival order.
package aggregate
