package selector

import "testing"

func TestCurrentCatalogUsesPackageLocators(t *testing.T) {
	c := Current()
	if c.Subpages != Subpages {
		t.Errorf("Subpages = %q, want %q", c.Subpages, Subpages)
	}
	if c.OfflineReadyIframes != OfflineReadyIframes {
		t.Errorf("OfflineReadyIframes = %q, want %q", c.OfflineReadyIframes, OfflineReadyIframes)
	}
	if c.Username != Username || c.Submit != Submit {
		t.Error("login locators must match the package constants")
	}
}

func TestLegacyCatalogOverridesChangedRegionsOnly(t *testing.T) {
	cur, leg := Current(), Legacy()

	changed := map[string][2]string{
		"Introduction": {cur.Introduction, leg.Introduction},
		"Subpages":     {cur.Subpages, leg.Subpages},
		"Labs":         {cur.Labs, leg.Labs},
		"Unsupported":  {cur.Unsupported, leg.Unsupported},
	}
	for name, pair := range changed {
		if pair[0] == pair[1] {
			t.Errorf("%s: legacy locator should differ from current", name)
		}
	}

	if leg.SpaceTitle != cur.SpaceTitle {
		t.Error("SpaceTitle is shared across revisions")
	}
	if leg.MetaDownload != cur.MetaDownload {
		t.Error("MetaDownload is shared across revisions")
	}
	if leg.Username != cur.Username || leg.Password != cur.Password {
		t.Error("login locators are shared across revisions")
	}
}
