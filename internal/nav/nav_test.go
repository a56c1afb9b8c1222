package nav

import "testing"

func TestBuildMarksActiveSection(t *testing.T) {
	items := Build("/shop/etched-vase")
	var active []string
	for _, it := range items {
		if it.Active {
			active = append(active, it.Href)
		}
	}
	if len(active) != 1 || active[0] != "/shop" {
		t.Fatalf("expected only /shop active, got %v", active)
	}
}

func TestBuildNoFalsePrefixMatch(t *testing.T) {
	for _, it := range Build("/shopping") {
		if it.Active {
			t.Fatalf("/shopping must not activate %s", it.Href)
		}
	}
}

func TestBreadcrumbs(t *testing.T) {
	crumbs := Breadcrumbs("/blog/etched-glass-process")
	if len(crumbs) != 3 {
		t.Fatalf("expected 3 crumbs, got %d: %+v", len(crumbs), crumbs)
	}
	if crumbs[0].Label != "Home" || crumbs[0].Active {
		t.Errorf("unexpected home crumb %+v", crumbs[0])
	}
	if crumbs[1].Label != "Blog" || crumbs[1].Href != "/blog" {
		t.Errorf("unexpected section crumb %+v", crumbs[1])
	}
	if crumbs[2].Label != "Etched glass process" || !crumbs[2].Active {
		t.Errorf("unexpected leaf crumb %+v", crumbs[2])
	}
}

func TestBreadcrumbsHomeOnly(t *testing.T) {
	crumbs := Breadcrumbs("/")
	if len(crumbs) != 1 || !crumbs[0].Active {
		t.Fatalf("unexpected crumbs for root: %+v", crumbs)
	}
}
