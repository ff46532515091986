// Package domain contains the entities shared by the density map packages:
// the profession and tier enumerations, the tier presentation table,
// administrative units with their geometry, zoning records and the joined
// density results served to map clients. The types carry no storage or
// transport concerns.
package domain
