package sqlinline

const QInsertUsageEvent = `--sql af2c7fc1-3c80-4fd2-84c0-54b0b56c0aba
insert into usage_events(id, user_id, event_type, success, latency_ms, created_at, properties)
values (gen_random_uuid(), $1::uuid, $2::text, $3::boolean, $4::int, now(), coalesce($5::jsonb, '{}'::jsonb));
`

// QAggregateUsageDay folds one calendar day of usage events into the
// analytics_daily rollup. Idempotent: re-running a day overwrites its row.
const QAggregateUsageDay = `--sql 3e305260-2d2e-4f04-95cd-cde141a57364
insert into analytics_daily (day, stories_created, stories_failed, quota_denials, updated_at)
select $1::date,
       count(*) filter (where event_type = 'STORY_CREATE' and success),
       count(*) filter (where event_type = 'STORY_CREATE' and not success),
       count(*) filter (where event_type = 'QUOTA_DENIED'),
       now()
from usage_events
where created_at >= $1::date and created_at < ($1::date + interval '1 day')
on conflict (day) do update
set stories_created = excluded.stories_created,
    stories_failed = excluded.stories_failed,
    quota_denials = excluded.quota_denials,
    updated_at = now();
`

// QSelectPendingUsageDays lists days that have events newer than their rollup
// (or no rollup at all), oldest first.
const QSelectPendingUsageDays = `--sql 0ed3ca49-9fca-46e0-9c22-f2de08dafeba
select distinct created_at::date as day
from usage_events e
where not exists (
    select 1 from analytics_daily a
    where a.day = e.created_at::date and a.updated_at >= e.created_at
)
order by day asc
limit $1::int;
`
