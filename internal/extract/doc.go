// Package extract finds the part of the vendor page that embeds the catalog
// and collects its inline script fragments in document order.
package extract
