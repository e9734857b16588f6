package plan

import "fmt"

// InstallNote returns the type-dependent provenance note shown next to
// an install alert. Empty for plain cran/standard rows.
func InstallNote(r *Row) string {
	switch r.Type {
	case TypeBioc:
		return "(BioC)"
	case TypeLocal:
		return "(local)"
	case TypeGitHub:
		user := r.Metadata[MetaRemoteUsername]
		repo := r.Metadata[MetaRemoteRepo]
		sha := r.Metadata[MetaRemoteSha]
		if len(sha) > 7 {
			sha = sha[:7]
		}
		return fmt.Sprintf("(github::%s/%s@%s)", user, repo, sha)
	case TypeStandard:
		if prov := r.Metadata["RemoteType"]; prov != "" && prov != "standard" && prov != "cran" {
			return fmt.Sprintf("(%s)", prov)
		}
		return ""
	default:
		return ""
	}
}
