package ospf

// EnterHelperMode begins acting as a graceful-restart helper for
// neighbor n upon receiving its Grace-LSA, per RFC 3623 §3.1: the
// neighbor's adjacency is held at Full for up to graceSeconds without
// reverifying Hellos, so its forwarding continues to be used while it
// restarts. Grounded on spec.md §4.8 and the session's resolved Open
// Question: DR status acquired during a restart is held only until the
// next Hello from the restarting neighbor, at which point normal
// election resumes rather than being pinned indefinitely.
func (o *Ospf) EnterHelperMode(n *Neighbor, graceSeconds uint32) {
	if n.state != NbrFull {
		return // RFC 3623 §3.1: only a neighbor already Full can be helped
	}
	n.restartHelper = true
	n.restartGraceEnd = addMillis(o.lastTick, graceSeconds*1000)
	if n.inactivityTimer != nil {
		n.inactivityTimer.Stop()
	}
	n.inactivityTimer = o.timerq.NewSingleShot(o.lastTick, graceSeconds*1000, func() {
		o.exitHelperModeFor(n, true)
	})
}

// exitHelperMode is called from Ospf.Tick when this router's own
// restartRemaining counter (set by a local graceful restart, not a
// neighbor's) reaches zero.
func (o *Ospf) exitHelperMode() {
	for _, a := range o.areas {
		for _, intf := range a.interfaces {
			for _, n := range intf.neighbors {
				if n.restartHelper {
					o.exitHelperModeFor(n, false)
				}
			}
		}
	}
}

// exitHelperModeFor ends helper mode for one neighbor, either because
// its grace period expired (timedOut, which also fires the neighbor's
// InactivityTimer event) or because exitHelperMode is ending every
// helper relationship. Either way, the
// interface re-runs DR election immediately instead of waiting for the
// neighbor's next Hello, since a timed-out helper relationship means
// this router can no longer trust the neighbor's last-declared DR/BDR.
func (o *Ospf) exitHelperModeFor(n *Neighbor, timedOut bool) {
	if !n.restartHelper {
		return
	}
	n.restartHelper = false
	if timedOut {
		n.dispatch(NbrEvInactivityTimer)
	}
	n.intf.electDR()
}

// onGraceLSAReceived processes a received Grace-LSA (spec.md §4.8): it
// looks up the advertising router among intf's neighbors and enters
// helper mode for it. The Grace-LSA's restart IP and restart reason are
// not checked.
func (o *Ospf) onGraceLSAReceived(intf *Interface, grace *GraceLSA, advRouter uint32) {
	n, ok := intf.neighbors[advRouter]
	if !ok {
		return
	}
	o.EnterHelperMode(n, grace.GracePeriod)
}

// BeginGracefulRestart starts this router's own graceful restart: it
// originates a Grace-LSA on every interface, keeps forwarding
// undisturbed, and relies on neighbors' helper mode to avoid
// resynchronizing the LSDB from scratch. Non-goal: hitless restart of
// the local router's forwarding plane itself (spec.md's Non-goals) —
// this only covers the control-plane signaling side.
func (o *Ospf) BeginGracefulRestart(graceSeconds int, reason uint8) {
	o.restartRemaining = graceSeconds
	for _, a := range o.areas {
		for _, intf := range a.interfaces {
			grace := &GraceLSA{GracePeriod: uint32(graceSeconds), RestartReason: reason}
			buf := make([]byte, grace.Len())
			grace.marshal(buf)
			o.installSelfOriginated(a, LSTypeOpaqueArea, intf.Addr, o.RouterID, buf)
		}
	}
}
