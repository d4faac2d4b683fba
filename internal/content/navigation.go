package content

import (
	"fmt"
	"github.com/samborkent/uuidv7"
	"golang.org/x/text/collate"
	"regexp"
	"sort"
	"strings"
	"tips-content-service/internal/environment"
	"tips-content-service/internal/logging"
	"tips-content-service/internal/models"
	"tips-content-service/internal/utils"
)

type NavigationItem struct {
	Uuid     string            `json:"uuid"`
	Href     string            `json:"href"`
	Label    string            `json:"label"`
	Parent   *NavigationItem   `json:"-"`
	Children []*NavigationItem `json:"children"`

	// sortKey orders siblings within one tree level.
	// It holds the document's order key when present, the label otherwise.
	sortKey string
}

type NavigationTreeService struct {
	*environment.Env
	*collate.Collator
}

// itemTreesLister implements the interface [collate.Lister]
// which can be passed into the receiver method Sort() of [collate.Collator]
//
// A [collate.Collator] allows to define the [collation order], so locale-aware sorting of characters is possible.
//
// Instead of Go's default pure Unicode code point ordering, [collate.Collator] is used to provide lexicographic order
// with locale-aware, numeric sorting for the navigation items.
//
// For example, Go's default pure Unicode code point ordering would sort the order keys below as follows:
//
//	"101"
//	"12"
//	"9"
//
// While a [collate.Collator] constructed with the [collate.Numeric] option sorts it like this
// (which is what readers expect from a numbered series):
//
//	"9"
//	"12"
//	"101"
//
// [collation order]: https://en.wikipedia.org/wiki/Collation
type itemTreesLister struct {
	itemTrees []*NavigationItem
}

func (l itemTreesLister) Len() int {
	return len(l.itemTrees)
}

func (l itemTreesLister) Swap(i, j int) {
	temp := l.itemTrees[i]
	l.itemTrees[i] = l.itemTrees[j]
	l.itemTrees[j] = temp
}

func (l itemTreesLister) Bytes(i int) []byte {
	// returns the bytes of the sort key at index i
	return []byte(l.itemTrees[i].sortKey)
}

// permalinkSegments splits a permalink into its path segments.
// Leading and trailing slashes carry no information and are dropped.
func permalinkSegments(permalink string) []string {
	trimmed := strings.Trim(permalink, "/")
	if len(trimmed) == 0 {
		return nil
	}

	return strings.Split(trimmed, "/")
}

// BuildNavigationTrees constructs a hierarchical navigation structure from a slice of DocumentMeta objects.
//
// It parses document permalinks into segments and assembles nested navigation trees,
// linking items by parent-child relationships. Documents sharing a leading segment
// end up under the same section node. Leaves keep the full permalink as Href so the
// frontend can query the document directly.
//
// @ID buildNavigationTrees
// @Summary Build document navigation trees from metadata
// @Param documentMetas body []models.DocumentMeta true "List of document metadata items"
// @Return A slice containing the root navigation items with their complete tree structure.
func (n NavigationTreeService) BuildNavigationTrees(documentMetas []models.DocumentMeta) []*NavigationItem {

	var rootNavigationItems []*NavigationItem

	for _, v := range documentMetas {
		if len(v.Permalink) <= 0 {
			n.LogErrorf(nil, fmt.Sprintf("document meta %s has empty permalink", v.SourcePath))
			continue
		}

		// The landing page needs special handling in the frontend.
		// Therefore, it should not be part of the side navigation items.
		if v.Permalink == "/" {
			n.LogDebugf(nil, "skip processing landing page: %s", v.SourcePath)
			continue
		}

		segments := permalinkSegments(v.Permalink)

		label := v.Title
		if len(label) == 0 {
			label = utils.TitleFromSlug(segments[len(segments)-1])
		}

		sortKey := v.Order
		if len(sortKey) == 0 {
			sortKey = label
		}

		// Documents with a single-segment permalink must be added directly to the
		// root navigation items since they belong to no section.
		// In other words, splitting and truncating their permalink won't work
		// as for documents residing under some section like /tips/
		if len(segments) == 1 {
			n.LogDebugf(nil, "processing top-level document w/o children: %s", v.Permalink)

			root := NavigationItem{
				Uuid:    uuidv7.New().String(),
				Label:   label,
				Href:    v.Permalink,
				sortKey: sortKey,
			}
			rootNavigationItems = append(rootNavigationItems, &root)

			continue
		}

		sectionLabel := utils.TitleFromSlug(segments[0])
		parent := NavigationItem{
			Uuid:    uuidv7.New().String(),
			Label:   sectionLabel,
			Href:    segments[0],
			sortKey: sectionLabel,
		}

		bottomToRootTree := n.createNavItemTree(segments[1:len(segments)-1], &parent)

		bottomMostNavItem := NavigationItem{
			Uuid:    uuidv7.New().String(),
			Label:   label,
			Href:    v.Permalink,
			sortKey: sortKey,
		}

		bottomToRootTree.Children = append(bottomToRootTree.Children, &bottomMostNavItem)

		root := n.findRoot(bottomToRootTree)

		rootNavigationItems = append(rootNavigationItems, root)
	}

	rootNavigationItems = n.linkChildrenWithTheSameParent(rootNavigationItems)

	visibleRootNavigationItems := n.removeDotPrefixedRoots(rootNavigationItems)
	if visibleRootNavigationItems != nil {
		rootNavigationItems = visibleRootNavigationItems
	}

	n.sortNavigationTrees(rootNavigationItems)

	return rootNavigationItems
}

// createNavItemTree recursively assembles a navigation tree from a sequence of permalink segments.
//
// It constructs parent-child relationships by creating a new NavigationItem for each segment.
// While descending from the provided parent node, the recursion continues until all segments are processed.
//
// ID createNavTreeBranch
// Summary Build a branch of the navigation tree
// Param segments body []string true "Permalink segments between section and document"
// Param navItem body NavigationItem true "Parent navigation item"
// Return The bottom-most child containing a recursive parent tree (from bottom to top)
func (n NavigationTreeService) createNavItemTree(segments []string, navItem *NavigationItem) *NavigationItem {

	// early return in case the permalink has only one intermediate element
	if len(segments) == 0 && navItem.Parent == nil {
		return navItem
	}

	if len(segments) == 0 {
		return navItem
	}

	label := utils.TitleFromSlug(segments[0])
	child := &NavigationItem{
		Uuid:    uuidv7.New().String(),
		Label:   label,
		Href:    segments[0],
		Parent:  navItem,
		sortKey: label,
	}

	navItem.Children = append(navItem.Children, child)

	return n.createNavItemTree(segments[1:], child)
}

// findRoot traverses upward in a navigation tree to find the root element
//
// This function follows parent pointers recursively until it finds the top-most parent with no parent.
//
// ID findNavigationRoot
// Summary Traverse a navigation item tree to find its root
// Param navItemPtr body NavigationItem true "Starting navigation node"
// Return The root element of the navigation tree
func (n NavigationTreeService) findRoot(navItemPtr *NavigationItem) *NavigationItem {
	if navItemPtr.Parent == nil {
		return navItemPtr
	}

	return n.findRoot(navItemPtr.Parent)
}

// linkChildrenWithTheSameParent merges navigation trees that share the same parent Href
// eliminating duplicates.
//
// It ensures that navigation items with identical Href values are combined under a single parent,
// eliminating redundant entries while preserving hierarchical relationships.
//
// ID linkSiblingNavigationItems
// Summary Merge navigation items with the same parent into unified subtrees
// Param navigationItemTrees body []NavigationItem true "Navigation trees to merge"
// Return A consolidated list of root navigation items with children correctly linked
func (n NavigationTreeService) linkChildrenWithTheSameParent(navigationItemTrees []*NavigationItem) []*NavigationItem {

	if len(navigationItemTrees) == 0 {
		return navigationItemTrees
	}

	treesByHrefAndUuid := utils.SliceToMap(navigationItemTrees, func(navigationItem *NavigationItem) string {
		return navigationItem.Href + ":" + navigationItem.Uuid
	})

	uuidsByHref := make(map[string][]string)
	for _, v := range navigationItemTrees {
		if uuids, ok := uuidsByHref[v.Href]; ok {
			uuidsByHref[v.Href] = append(uuids, v.Uuid)
			continue
		}

		uuidsByHref[v.Href] = []string{v.Uuid}
	}

	for _, self := range navigationItemTrees {
		uuids, ok := uuidsByHref[self.Href]
		// jump to the next iteration
		// if self.Href references an already processed (and removed) navigation item
		if !ok {
			continue
		}

		for _, uuid := range uuids {
			// jump to the next iteration to prevent linking self's children twice
			if self.Uuid == uuid {
				continue
			}

			key := self.Href + ":" + uuid
			twin, ok := treesByHrefAndUuid[key]
			if !ok {
				n.LogErrorf(logging.GetLogType("content"), "could not find a navigation item tree for %s; please check if the map was created correctly", key)
				continue
			}

			// links children into one slice and removes twin
			self.Children = append(self.Children, twin.Children...)
			delete(treesByHrefAndUuid, key)
		}

		// removes the map entry of the href that was currently processed
		delete(uuidsByHref, self.Href)
	}

	navigationItemTrees = make([]*NavigationItem, 0, len(treesByHrefAndUuid))
	for _, v := range treesByHrefAndUuid {
		navigationItemTrees = append(navigationItemTrees, v)
	}

	sort.Slice(navigationItemTrees, func(a, b int) bool {
		return strings.Compare(navigationItemTrees[a].Href, navigationItemTrees[b].Href) == -1
	})

	// traverses the children of each tree recursively (down to the bottom-most children of each tree)
	for i := 0; i < len(navigationItemTrees); i++ {
		navigationItemTrees[i].Children = n.linkChildrenWithTheSameParent(navigationItemTrees[i].Children)
	}

	return navigationItemTrees
}

// removeDotPrefixedRoots removes roots (including their children) whose Href are prefixed with a dot (.)
// It runs in O(n) time.
//
// ID removeDotPrefixedRoots
// Param rootNavigationItems body []*NavigationItem true "root navigation items"
func (n NavigationTreeService) removeDotPrefixedRoots(rootNavigationItems []*NavigationItem) []*NavigationItem {
	compiledRegex, err := regexp.Compile("^\\.")
	if err != nil {
		n.LogErrorf(nil, "failed to compile regex: %s", err.Error())
		return nil
	}

	visibleRootNavigationItems := make([]*NavigationItem, 0, len(rootNavigationItems))
	for _, v := range rootNavigationItems {
		// skip a hidden top-level element; top-level documents carry
		// their full permalink as Href, so the leading slash is trimmed first
		if compiledRegex.MatchString(strings.TrimPrefix(v.Href, "/")) {
			continue
		}
		visibleRootNavigationItems = append(visibleRootNavigationItems, v)
	}

	return visibleRootNavigationItems
}

// sortNavigationTrees sorts every level of the given trees by sort key,
// applying the collation order of the service's collator.
//
// Siblings with an explicit order key are arranged by it, the rest by label.
func (n NavigationTreeService) sortNavigationTrees(navigationItemTrees []*NavigationItem) {
	if len(navigationItemTrees) == 0 {
		return
	}

	l := itemTreesLister{itemTrees: navigationItemTrees}
	n.Sort(l)

	for _, v := range navigationItemTrees {
		n.sortNavigationTrees(v.Children)
	}
}
