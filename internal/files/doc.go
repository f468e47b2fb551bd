// Package files discovers delimited sales sources on disk.
//
// Discovery lists the .csv, .tsv and .txt files of a directory newest
// first, so the dashboard and the console runner can show which sources
// are available and which one is loaded.
//
// Example usage:
//
//	discovery := files.NewDiscovery(paths.BaseDir)
//	sources, err := discovery.FindSources(paths.DataDir)
//	files.MarkActive(sources, service.Source())
package files
