package maxflow

import "math"

const infiniteDist = int32(math.MaxInt32)

// maxflowInit builds the initial search trees: every node with positive
// terminal capacity becomes a source-tree root, negative a sink-tree root,
// all roots active.
func (g *Graph[T]) maxflowInit() {
	g.queueFirst[0], g.queueFirst[1] = nilNode, nilNode
	g.queueLast[0], g.queueLast[1] = nilNode, nilNode
	g.orphanFirst, g.orphanLast = nil, nil
	g.time = 0

	for id := range g.nodes {
		n := &g.nodes[id]
		n.next = nilNode
		n.isMarked = false
		n.isInChangedList = false
		n.ts = g.time
		if n.trCap > 0 {
			n.isSink = false
			n.parent = terminalArc
			n.dist = 1
			g.setActive(NodeID(id))
		} else if n.trCap < 0 {
			n.isSink = true
			n.parent = terminalArc
			n.dist = 1
			g.setActive(NodeID(id))
		} else {
			n.parent = nilArc
		}
	}
}

// maxflowReuseTreesInit repairs the trees left by the previous solve. Only
// marked nodes (queue 1) are revisited: a marked node whose terminal side
// changed is re-rooted in the proper tree, its children are orphaned and
// opposite-tree neighbors reactivated. Finishes by adopting all orphans.
func (g *Graph[T]) maxflowReuseTreesInit() {
	queue := g.queueFirst[1]
	g.queueFirst[0], g.queueLast[0] = nilNode, nilNode
	g.queueFirst[1], g.queueLast[1] = nilNode, nilNode
	g.orphanFirst, g.orphanLast = nil, nil

	g.time++

	for queue != nilNode {
		i := queue
		queue = g.nodes[i].next
		if queue == i {
			queue = nilNode
		}
		g.nodes[i].next = nilNode
		g.nodes[i].isMarked = false
		g.setActive(i)

		if g.nodes[i].trCap == 0 {
			if g.nodes[i].parent != nilArc {
				g.setOrphanRear(i)
			}
			continue
		}

		if g.nodes[i].trCap > 0 {
			if g.nodes[i].parent == nilArc || g.nodes[i].isSink {
				g.nodes[i].isSink = false
				for a := g.nodes[i].first; a != nilArc; a = g.arcs[a].next {
					j := g.arcs[a].head
					if !g.nodes[j].isMarked {
						if g.nodes[j].parent == sister(a) {
							g.setOrphanRear(j)
						}
						if g.nodes[j].parent != nilArc && g.nodes[j].isSink && g.arcs[a].rCap > 0 {
							g.setActive(j)
						}
					}
				}
				g.addToChangedList(i)
			}
		} else {
			if g.nodes[i].parent == nilArc || !g.nodes[i].isSink {
				g.nodes[i].isSink = true
				for a := g.nodes[i].first; a != nilArc; a = g.arcs[a].next {
					j := g.arcs[a].head
					if !g.nodes[j].isMarked {
						if g.nodes[j].parent == sister(a) {
							g.setOrphanRear(j)
						}
						if g.nodes[j].parent != nilArc && !g.nodes[j].isSink && g.arcs[sister(a)].rCap > 0 {
							g.setActive(j)
						}
					}
				}
				g.addToChangedList(i)
			}
		}
		g.nodes[i].parent = terminalArc
		g.nodes[i].ts = g.time
		g.nodes[i].dist = 1
	}

	g.adoptOrphans()
}

// augment pushes flow along the path source tree -> middle -> sink tree and
// orphans every node whose parent arc got saturated.
func (g *Graph[T]) augment(middle ArcID) {
	var i NodeID
	var a ArcID

	// bottleneck over the source-tree path
	bottleneck := g.arcs[middle].rCap
	for i = g.arcs[sister(middle)].head; ; i = g.arcs[a].head {
		a = g.nodes[i].parent
		if a == terminalArc {
			break
		}
		if bottleneck > g.arcs[sister(a)].rCap {
			bottleneck = g.arcs[sister(a)].rCap
		}
	}
	if bottleneck > g.nodes[i].trCap {
		bottleneck = g.nodes[i].trCap
	}
	// and over the sink-tree path
	for i = g.arcs[middle].head; ; i = g.arcs[a].head {
		a = g.nodes[i].parent
		if a == terminalArc {
			break
		}
		if bottleneck > g.arcs[a].rCap {
			bottleneck = g.arcs[a].rCap
		}
	}
	if bottleneck > -g.nodes[i].trCap {
		bottleneck = -g.nodes[i].trCap
	}

	g.arcs[sister(middle)].rCap += bottleneck
	g.arcs[middle].rCap -= bottleneck

	for i = g.arcs[sister(middle)].head; ; i = g.arcs[a].head {
		a = g.nodes[i].parent
		if a == terminalArc {
			break
		}
		g.arcs[a].rCap += bottleneck
		g.arcs[sister(a)].rCap -= bottleneck
		if g.arcs[sister(a)].rCap == 0 {
			g.setOrphanFront(i)
		}
	}
	g.nodes[i].trCap -= bottleneck
	if g.nodes[i].trCap == 0 {
		g.setOrphanFront(i)
	}

	for i = g.arcs[middle].head; ; i = g.arcs[a].head {
		a = g.nodes[i].parent
		if a == terminalArc {
			break
		}
		g.arcs[sister(a)].rCap += bottleneck
		g.arcs[a].rCap -= bottleneck
		if g.arcs[a].rCap == 0 {
			g.setOrphanFront(i)
		}
	}
	g.nodes[i].trCap += bottleneck
	if g.nodes[i].trCap == 0 {
		g.setOrphanFront(i)
	}

	g.flow += bottleneck
}

// processSourceOrphan looks for a new valid parent of i inside the source
// tree, preferring the candidate closest to the root. Origins are verified
// against the current timestamp so that a parent cannot lie below i in a
// detached subtree.
func (g *Graph[T]) processSourceOrphan(i NodeID) {
	a0Min := nilArc
	dMin := infiniteDist

	for a0 := g.nodes[i].first; a0 != nilArc; a0 = g.arcs[a0].next {
		if g.arcs[sister(a0)].rCap == 0 {
			continue
		}
		j := g.arcs[a0].head
		if g.nodes[j].isSink || g.nodes[j].parent == nilArc {
			continue
		}

		// walk to the root to check j's origin
		d := int32(0)
		jj := j
		for {
			if g.nodes[jj].ts == g.time {
				d += g.nodes[jj].dist
				break
			}
			a := g.nodes[jj].parent
			d++
			if a == terminalArc {
				g.nodes[jj].ts = g.time
				g.nodes[jj].dist = 1
				break
			}
			if a == orphanArc {
				d = infiniteDist
				break
			}
			jj = g.arcs[a].head
		}
		if d < infiniteDist {
			if d < dMin {
				a0Min = a0
				dMin = d
			}
			// mark distances along the verified path
			for jj = g.arcs[a0].head; g.nodes[jj].ts != g.time; jj = g.arcs[g.nodes[jj].parent].head {
				g.nodes[jj].ts = g.time
				g.nodes[jj].dist = d
				d--
			}
		}
	}

	g.nodes[i].parent = a0Min
	if a0Min != nilArc {
		g.nodes[i].ts = g.time
		g.nodes[i].dist = dMin + 1
		return
	}

	// no parent found; i becomes free
	g.addToChangedList(i)

	for a0 := g.nodes[i].first; a0 != nilArc; a0 = g.arcs[a0].next {
		j := g.arcs[a0].head
		if g.nodes[j].isSink {
			continue
		}
		a := g.nodes[j].parent
		if a == nilArc {
			continue
		}
		if g.arcs[sister(a0)].rCap != 0 {
			g.setActive(j)
		}
		if a != terminalArc && a != orphanArc && g.arcs[a].head == i {
			g.setOrphanRear(j)
		}
	}
}

func (g *Graph[T]) processSinkOrphan(i NodeID) {
	a0Min := nilArc
	dMin := infiniteDist

	for a0 := g.nodes[i].first; a0 != nilArc; a0 = g.arcs[a0].next {
		if g.arcs[a0].rCap == 0 {
			continue
		}
		j := g.arcs[a0].head
		if !g.nodes[j].isSink || g.nodes[j].parent == nilArc {
			continue
		}

		d := int32(0)
		jj := j
		for {
			if g.nodes[jj].ts == g.time {
				d += g.nodes[jj].dist
				break
			}
			a := g.nodes[jj].parent
			d++
			if a == terminalArc {
				g.nodes[jj].ts = g.time
				g.nodes[jj].dist = 1
				break
			}
			if a == orphanArc {
				d = infiniteDist
				break
			}
			jj = g.arcs[a].head
		}
		if d < infiniteDist {
			if d < dMin {
				a0Min = a0
				dMin = d
			}
			for jj = g.arcs[a0].head; g.nodes[jj].ts != g.time; jj = g.arcs[g.nodes[jj].parent].head {
				g.nodes[jj].ts = g.time
				g.nodes[jj].dist = d
				d--
			}
		}
	}

	g.nodes[i].parent = a0Min
	if a0Min != nilArc {
		g.nodes[i].ts = g.time
		g.nodes[i].dist = dMin + 1
		return
	}

	g.addToChangedList(i)

	for a0 := g.nodes[i].first; a0 != nilArc; a0 = g.arcs[a0].next {
		j := g.arcs[a0].head
		if !g.nodes[j].isSink {
			continue
		}
		a := g.nodes[j].parent
		if a == nilArc {
			continue
		}
		if g.arcs[a0].rCap != 0 {
			g.setActive(j)
		}
		if a != terminalArc && a != orphanArc && g.arcs[a].head == i {
			g.setOrphanRear(j)
		}
	}
}

// adoptOrphans drains the orphan list to exhaustion. Orphans created during
// processing join the same list (front on saturation, rear otherwise).
func (g *Graph[T]) adoptOrphans() {
	for g.orphanFirst != nil {
		c := g.orphanFirst
		g.orphanFirst = c.next
		if g.orphanFirst == nil {
			g.orphanLast = nil
		}
		i := c.id
		g.pool.put(c)
		if g.nodes[i].isSink {
			g.processSinkOrphan(i)
		} else {
			g.processSourceOrphan(i)
		}
	}
}

// Maxflow computes the maximum flow / minimum cut. With reuseTrees the search
// trees of the previous solve are repaired instead of rebuilt; every node
// whose capacities were edited since then must have been passed to MarkNode.
// A non-nil changed list collects the nodes whose cut side may have changed
// and requires reuseTrees.
func (g *Graph[T]) Maxflow(reuseTrees bool, changed *ChangedList) (T, error) {
	if reuseTrees && g.maxflowIteration == 0 {
		return 0, ErrReuseBeforeFirstSolve
	}
	if changed != nil && !reuseTrees {
		return 0, ErrChangedListWithoutReuse
	}

	if g.pool == nil {
		g.pool = newOrphanPool()
	}
	g.changed = changed

	if reuseTrees {
		g.maxflowReuseTreesInit()
	} else {
		g.maxflowInit()
	}

	currentNode := nilNode
	for {
		i := currentNode
		if i != nilNode {
			g.nodes[i].next = nilNode
			if g.nodes[i].parent == nilArc {
				i = nilNode
			}
		}
		if i == nilNode {
			i = g.nextActive()
			if i == nilNode {
				break
			}
		}

		// growth
		boundary := nilArc
		if !g.nodes[i].isSink {
			for a := g.nodes[i].first; a != nilArc; a = g.arcs[a].next {
				if g.arcs[a].rCap == 0 {
					continue
				}
				j := g.arcs[a].head
				nj := &g.nodes[j]
				if nj.parent == nilArc {
					nj.isSink = false
					nj.parent = sister(a)
					nj.ts = g.nodes[i].ts
					nj.dist = g.nodes[i].dist + 1
					g.setActive(j)
					g.addToChangedList(j)
				} else if nj.isSink {
					boundary = a
					break
				} else if nj.ts <= g.nodes[i].ts && nj.dist > g.nodes[i].dist {
					// shorten the path from j to the root
					nj.parent = sister(a)
					nj.ts = g.nodes[i].ts
					nj.dist = g.nodes[i].dist + 1
				}
			}
		} else {
			for a := g.nodes[i].first; a != nilArc; a = g.arcs[a].next {
				if g.arcs[sister(a)].rCap == 0 {
					continue
				}
				j := g.arcs[a].head
				nj := &g.nodes[j]
				if nj.parent == nilArc {
					nj.isSink = true
					nj.parent = sister(a)
					nj.ts = g.nodes[i].ts
					nj.dist = g.nodes[i].dist + 1
					g.setActive(j)
					g.addToChangedList(j)
				} else if !nj.isSink {
					boundary = sister(a)
					break
				} else if nj.ts <= g.nodes[i].ts && nj.dist > g.nodes[i].dist {
					nj.parent = sister(a)
					nj.ts = g.nodes[i].ts
					nj.dist = g.nodes[i].dist + 1
				}
			}
		}

		g.time++

		if boundary != nilArc {
			// keep i active, retry it before polling the queue
			g.nodes[i].next = i
			currentNode = i

			g.augment(boundary)
			g.adoptOrphans()
		} else {
			currentNode = nilNode
		}
	}

	if g.debug {
		if err := g.checkConsistency(nilNode); err != nil {
			panic(err)
		}
	}

	if !reuseTrees || g.maxflowIteration%64 == 0 {
		g.pool = nil
	}
	g.maxflowIteration++
	g.changed = nil

	return g.flow, nil
}
