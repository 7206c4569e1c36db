package contract

import (
	"context"

	"github.com/CoreumFoundation/coreumbridge-xrpl-contract/logger"
)

// MaxTicketsToAllocate is the upper bound on the number of tickets a single AllocateTickets
// operation may request.
const MaxTicketsToAllocate = 250

func loadAvailableTickets(k *Keeper) ([]uint32, error) {
	tickets, _, err := availableTicketsItem.Load(k.store)
	return tickets, err
}

func loadUsedTicketsCounter(k *Keeper) (uint32, error) {
	counter, _, err := usedTicketsCounterItem.Load(k.store)
	return counter, err
}

func loadPendingTicketUpdate(k *Keeper) (bool, error) {
	v, _, err := pendingTicketUpdateItem.Load(k.store)
	return v, err
}

// reserveTicket pops the front ticket off the pool, enforcing that the very last ticket is
// reserved for an auto-triggered AllocateTickets operation. When the reservation crosses the used
// ticket threshold it transparently enqueues a new AllocateTickets operation to replenish the
// pool, consuming the pool's next front ticket to carry it (even if it is the only one left); if
// no ticket remains to carry that operation
// it reports addingTicketAllocationSuccess=false instead of failing the caller's reservation.
func (k *Keeper) reserveTicket(ctx context.Context, forAutoAllocation bool) (ticket uint32, addingTicketAllocationSuccess *bool, err error) {
	tickets, err := loadAvailableTickets(k)
	if err != nil {
		return 0, nil, err
	}
	if len(tickets) == 0 {
		return 0, nil, ErrNoAvailableTickets
	}
	if len(tickets) == 1 && !forAutoAllocation {
		return 0, nil, ErrLastTicketReserved
	}

	ticket = tickets[0]
	tickets = tickets[1:]
	if err := availableTicketsItem.Save(k.store, tickets); err != nil {
		return 0, nil, err
	}

	counter, err := loadUsedTicketsCounter(k)
	if err != nil {
		return 0, nil, err
	}
	counter++
	if err := usedTicketsCounterItem.Save(k.store, counter); err != nil {
		return 0, nil, err
	}

	if forAutoAllocation {
		return ticket, nil, nil
	}

	cfg, _, err := configItem.Load(k.store)
	if err != nil {
		return 0, nil, err
	}
	pendingUpdate, err := loadPendingTicketUpdate(k)
	if err != nil {
		return 0, nil, err
	}
	if counter < cfg.UsedTicketSequenceThreshold || pendingUpdate {
		return ticket, nil, nil
	}

	success := true
	allocationTicket, allocErr := k.reserveAutoAllocationTicket(ctx)
	if allocErr != nil {
		success = false
		k.log.Warn(
			ctx, "could not reserve a ticket to carry the auto-triggered allocation operation",
			logger.Error(allocErr),
		)
	} else {
		number := cfg.UsedTicketSequenceThreshold + 1
		if err := k.createOperation(ctx, allocationTicket, 0, OperationType{
			AllocateTickets: &OperationTypeAllocateTickets{Number: number},
		}); err != nil {
			return 0, nil, err
		}
		if err := pendingTicketUpdateItem.Save(k.store, true); err != nil {
			return 0, nil, err
		}
	}

	return ticket, &success, nil
}

// reserveAutoAllocationTicket pops the pool's front ticket without the usual last-ticket guard;
// it exists only so reserveTicket can carry its own auto-triggered AllocateTickets operation.
func (k *Keeper) reserveAutoAllocationTicket(ctx context.Context) (uint32, error) {
	tickets, err := loadAvailableTickets(k)
	if err != nil {
		return 0, err
	}
	if len(tickets) == 0 {
		return 0, ErrNoAvailableTickets
	}
	ticket := tickets[0]
	if err := availableTicketsItem.Save(k.store, tickets[1:]); err != nil {
		return 0, err
	}
	counter, err := loadUsedTicketsCounter(k)
	if err != nil {
		return 0, err
	}
	if err := usedTicketsCounterItem.Save(k.store, counter+1); err != nil {
		return 0, err
	}
	return ticket, nil
}

// returnTicket pushes a ticket back to the front of the pool. Called on Invalid transfer
// evidence, on cancellation of a ticket-bearing operation, and on rejection of any operation that
// isn't itself an AllocateTickets.
func (k *Keeper) returnTicket(ticket uint32) error {
	tickets, err := loadAvailableTickets(k)
	if err != nil {
		return err
	}
	tickets = append([]uint32{ticket}, tickets...)
	if err := availableTicketsItem.Save(k.store, tickets); err != nil {
		return err
	}
	counter, err := loadUsedTicketsCounter(k)
	if err != nil {
		return err
	}
	if counter > 0 {
		counter--
	}
	return usedTicketsCounterItem.Save(k.store, counter)
}

// allocateTickets extends the pool with a freshly allocated batch and clears the pending flag.
// Called on Accepted AllocateTickets evidence.
func (k *Keeper) allocateTickets(newTickets []uint32) error {
	tickets, err := loadAvailableTickets(k)
	if err != nil {
		return err
	}
	tickets = append(tickets, newTickets...)
	if err := availableTicketsItem.Save(k.store, tickets); err != nil {
		return err
	}

	counter, err := loadUsedTicketsCounter(k)
	if err != nil {
		return err
	}
	batch := uint32(len(newTickets))
	if counter > batch {
		counter -= batch
	} else {
		counter = 0
	}
	if err := usedTicketsCounterItem.Save(k.store, counter); err != nil {
		return err
	}

	return pendingTicketUpdateItem.Save(k.store, false)
}

// recoverTickets is the owner-only escape hatch for when the pool is empty and no update is
// pending: it creates a new AllocateTickets operation keyed by accountSequence (not a ticket).
func (k *Keeper) recoverTickets(ctx context.Context, accountSequence uint32, numberOfTickets uint32) error {
	tickets, err := loadAvailableTickets(k)
	if err != nil {
		return err
	}
	if len(tickets) != 0 {
		return ErrStillHaveAvailableTickets
	}
	pendingUpdate, err := loadPendingTicketUpdate(k)
	if err != nil {
		return err
	}
	if pendingUpdate {
		return ErrPendingTicketUpdate
	}

	cfg, _, err := configItem.Load(k.store)
	if err != nil {
		return err
	}
	if numberOfTickets <= cfg.UsedTicketSequenceThreshold || numberOfTickets > MaxTicketsToAllocate {
		return ErrInvalidTicketSequenceToAllocate
	}

	if err := k.createOperation(ctx, 0, accountSequence, OperationType{
		AllocateTickets: &OperationTypeAllocateTickets{Number: numberOfTickets},
	}); err != nil {
		return err
	}
	return pendingTicketUpdateItem.Save(k.store, true)
}
